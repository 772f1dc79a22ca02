package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"

	"github.com/talentum-hr/payops-backend-go/internal/handler/http/response"
)

// Roles recognized in access-token claims.
const (
	RolePayrollAdmin = "payroll_admin"
	RoleFinanceHead  = "finance_head"
	RoleHRAdmin      = "hr_admin"
	RoleHRHead       = "hr_head"
	RoleStoreManager = "store_manager"
	RoleAreaManager  = "area_manager"
	RoleAccounts     = "accounts"
	RoleEmployee     = "employee"
)

// RequireRole allows only the listed roles through.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, requiredRolesMessage(roles))
				return
			}

			role, ok := claims["role"].(string)
			if !ok {
				response.Forbidden(w, requiredRolesMessage(roles))
				return
			}

			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, requiredRolesMessage(roles))
		})
	}
}

func requiredRolesMessage(roles []string) string {
	return fmt.Sprintf("Insufficient permissions: requires one of '%s'", strings.Join(roles, "', '"))
}
