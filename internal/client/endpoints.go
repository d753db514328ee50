package client

// Narrow, per-endpoint callers over Do/GetJSON/PostJSON. The request and
// response shapes here form the contract with the remote API; they carry no
// retry or credential logic of their own.

import (
	"context"
	"time"

	domainauth "github.com/inthon2025/candy-session-go/internal/domain/auth"
)

// Profile mirrors the response of GET /api/auth/login, used as the generic
// "fetch profile" probe.
type Profile struct {
	UserID        string `json:"userId"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	EmailVerified bool   `json:"emailVerified"`
}

// FetchProfile retrieves the signed-in user's profile.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.GetJSON(ctx, "/api/auth/login", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchRole performs one role lookup. A null or absent role field maps to
// RoleUnset without error; HTTP and transport failures are returned as
// errors for the caller (the role service) to absorb.
func (c *Client) FetchRole(ctx context.Context) (domainauth.Role, error) {
	var body struct {
		Role string `json:"role"`
	}
	if err := c.GetJSON(ctx, "/api/user/role", &body); err != nil {
		return domainauth.RoleUnset, err
	}
	return domainauth.ParseRole(body.Role), nil
}

// SetRole persists a new role choice for the current session.
func (c *Client) SetRole(ctx context.Context, role domainauth.Role) error {
	return c.PostJSON(ctx, "/api/user/set-role", map[string]string{"role": string(role)}, nil)
}

// FetchCandyBalance retrieves the session's candy balance.
func (c *Client) FetchCandyBalance(ctx context.Context) (int, error) {
	var body struct {
		Candy int `json:"candy"`
	}
	if err := c.GetJSON(ctx, "/api/user/candy", &body); err != nil {
		return 0, err
	}
	return body.Candy, nil
}

// Child is one entry of a parent's children list.
type Child struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ListChildren retrieves the children registered to the current parent.
func (c *Client) ListChildren(ctx context.Context) ([]Child, error) {
	var body struct {
		Children []Child `json:"children"`
	}
	if err := c.GetJSON(ctx, "/api/parent/children", &body); err != nil {
		return nil, err
	}
	return body.Children, nil
}

// AddChildRequest is the payload for registering a child account.
type AddChildRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AddChild registers a child under the current parent. A non-2xx response
// surfaces as an *APIError carrying the server's validation message.
func (c *Client) AddChild(ctx context.Context, req AddChildRequest) (*Child, error) {
	var child Child
	if err := c.PostJSON(ctx, "/api/parent/children", req, &child); err != nil {
		return nil, err
	}
	return &child, nil
}

// Payment is one payment record.
type Payment struct {
	ID        string    `json:"id"`
	Amount    int       `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListPayments retrieves the session's payment history.
func (c *Client) ListPayments(ctx context.Context) ([]Payment, error) {
	var body struct {
		Payments []Payment `json:"payments"`
	}
	if err := c.GetJSON(ctx, "/api/payment/list", &body); err != nil {
		return nil, err
	}
	return body.Payments, nil
}

// CreatePaymentRequest is the payload for creating a payment.
type CreatePaymentRequest struct {
	ChildID string `json:"childId"`
	Amount  int    `json:"amount"`
}

// CreatePayment creates a payment for a child.
func (c *Client) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	var payment Payment
	if err := c.PostJSON(ctx, "/api/payment/create", req, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// MentoringApplication is one mentoring application record.
type MentoringApplication struct {
	ID        string    `json:"id"`
	MentorID  string    `json:"mentorId"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListMentoringApplications retrieves the session's mentoring applications.
func (c *Client) ListMentoringApplications(ctx context.Context) ([]MentoringApplication, error) {
	var body struct {
		Applications []MentoringApplication `json:"applications"`
	}
	if err := c.GetJSON(ctx, "/api/mentoring/applications", &body); err != nil {
		return nil, err
	}
	return body.Applications, nil
}

// ApplyMentoringRequest is the payload for applying to a mentoring slot.
type ApplyMentoringRequest struct {
	MentorID string `json:"mentorId"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
}

// ApplyMentoring submits a mentoring application.
func (c *Client) ApplyMentoring(ctx context.Context, req ApplyMentoringRequest) error {
	return c.PostJSON(ctx, "/api/mentoring/apply", req, nil)
}
