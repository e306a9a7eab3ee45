package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"smartoffice-console/models"
)

type officePayload struct {
	OfficeID string `mapstructure:"officeId"`
	Name     string `mapstructure:"name"`
	Address  string `mapstructure:"address"`
	Manager  struct {
		Name  string `mapstructure:"managerName"`
		Email string `mapstructure:"managerEmail"`
	} `mapstructure:"manager"`
}

func (c *Client) ListOffices(ctx context.Context, token string) ([]models.Office, error) {
	var body struct {
		Offices []map[string]any `json:"offices"`
	}
	if err := c.do(ctx, token, http.MethodGet, "/offices", nil, nil, &body); err != nil {
		return nil, err
	}

	offices := make([]models.Office, 0, len(body.Offices))
	for _, raw := range body.Offices {
		var p officePayload
		if err := weakDecode(raw, &p); err != nil {
			return nil, fmt.Errorf("decode office: %w", err)
		}
		offices = append(offices, models.Office{
			OfficeID:     p.OfficeID,
			Name:         p.Name,
			Address:      p.Address,
			ManagerName:  p.Manager.Name,
			ManagerEmail: p.Manager.Email,
		})
	}
	return offices, nil
}

// CreateOffice creates an office and its manager account and returns the new
// office id.
func (c *Client) CreateOffice(ctx context.Context, token string, req models.CreateOfficeRequest) (string, error) {
	var out struct {
		OfficeID string `json:"officeId"`
	}
	if err := c.do(ctx, token, http.MethodPost, "/offices", nil, req, &out); err != nil {
		return "", err
	}
	return out.OfficeID, nil
}

func (c *Client) DeleteOffice(ctx context.Context, token, officeID string) error {
	body := map[string]string{"action": "DELETE_OFFICE", "officeId": officeID}
	return c.do(ctx, token, http.MethodDelete, "/offices", nil, body, nil)
}

type officeDetailPayload struct {
	OfficeID  string `mapstructure:"officeId"`
	Name      string `mapstructure:"name"`
	Address   string `mapstructure:"address"`
	CreatedAt string `mapstructure:"createdAt"`
	Manager   *struct {
		UserID     string `mapstructure:"userId"`
		Name       string `mapstructure:"managerName"`
		Email      string `mapstructure:"managerEmail"`
		Role       string `mapstructure:"managerRole"`
		Status     string `mapstructure:"managerStatus"`
		AssignedAt string `mapstructure:"assignedAt"`
	} `mapstructure:"manager"`
}

// GetOfficeDetail returns one office with its assigned manager. Manager is
// nil when the office has none.
func (c *Client) GetOfficeDetail(ctx context.Context, token, officeID string) (*models.OfficeDetail, error) {
	var body struct {
		Office map[string]any `json:"office"`
	}
	q := url.Values{"officeId": {officeID}}
	if err := c.do(ctx, token, http.MethodGet, "/office-detail", q, nil, &body); err != nil {
		return nil, err
	}
	if body.Office == nil {
		return nil, fmt.Errorf("office %s: %w", officeID, ErrNotFound)
	}

	var p officeDetailPayload
	if err := weakDecode(body.Office, &p); err != nil {
		return nil, fmt.Errorf("decode office detail: %w", err)
	}
	detail := &models.OfficeDetail{
		OfficeID:  p.OfficeID,
		Name:      p.Name,
		Address:   p.Address,
		CreatedAt: p.CreatedAt,
	}
	if detail.OfficeID == "" {
		detail.OfficeID = officeID
	}
	if m := p.Manager; m != nil {
		detail.Manager = &models.OfficeManager{
			UserID:     m.UserID,
			Name:       m.Name,
			Email:      m.Email,
			Role:       m.Role,
			Status:     m.Status,
			AssignedAt: m.AssignedAt,
		}
	}
	return detail, nil
}

// UpdateOffice changes the office's own fields (name, address).
func (c *Client) UpdateOffice(ctx context.Context, token, officeID string, updates map[string]string) error {
	body := map[string]any{"target": "OFFICE", "officeId": officeID, "updates": updates}
	return c.do(ctx, token, http.MethodPut, "/offices", nil, body, nil)
}

// UpdateManager changes a manager account (name, status).
func (c *Client) UpdateManager(ctx context.Context, token, userID string, updates map[string]string) error {
	body := map[string]any{"target": "MANAGER", "userId": userID, "updates": updates}
	return c.do(ctx, token, http.MethodPut, "/offices", nil, body, nil)
}
