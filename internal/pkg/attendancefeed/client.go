package attendancefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/talentum-hr/payops-backend-go/internal/domain/payroll"
)

// Client pulls monthly attendance summaries from the biometric
// attendance system. It is the payroll run's external collaborator;
// any transport failure surfaces as ErrAttendanceUnavailable so the
// run parks with a retryable error instead of half-imported data.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type factRecord struct {
	EmployeeID  string  `json:"employee_id"`
	WorkingDays int     `json:"working_days"`
	PresentDays int     `json:"present_days"`
	LWPDays     float64 `json:"lwp_days"`
}

func (c *Client) MonthlyFacts(ctx context.Context, year, month int) ([]payroll.AttendanceFact, error) {
	url := fmt.Sprintf("%s/api/v1/facts?year=%d&month=%d", c.baseURL, year, month)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build attendance request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, payroll.ErrAttendanceUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, payroll.ErrAttendanceUnavailable
	}

	var records []factRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode attendance facts: %w", err)
	}

	facts := make([]payroll.AttendanceFact, 0, len(records))
	for _, rec := range records {
		facts = append(facts, payroll.AttendanceFact{
			EmployeeID:  rec.EmployeeID,
			WorkingDays: rec.WorkingDays,
			PresentDays: rec.PresentDays,
			LWPDays:     decimal.NewFromFloat(rec.LWPDays),
		})
	}
	return facts, nil
}
