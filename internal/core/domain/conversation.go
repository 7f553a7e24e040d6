package domain

import (
	"strings"
	"time"
)

// ClientProfile is what the client directory knows about a visitor.
type ClientProfile struct {
	RecordID string `json:"record_id"`
	Name     string `json:"name"`
	Company  string `json:"company"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Industry string `json:"industry,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// ConversationContext is the per-session state accumulated by the voice agent.
// The retrieval pipeline only reads it.
type ConversationContext struct {
	SessionID            string    `json:"session_id"`
	RecordID             string    `json:"record_id,omitempty"`
	ClientName           string    `json:"client_name,omitempty"`
	Company              string    `json:"company,omitempty"`
	Industry             string    `json:"industry,omitempty"`
	Email                string    `json:"email,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	CompanySummary       string    `json:"company_summary,omitempty"`
	ResearchAboutCompany string    `json:"research_about_company,omitempty"`
	Challenges           []string  `json:"challenges"`
	GreetingDone         bool      `json:"greeting_done"`
	IdentityConfirmed    bool      `json:"identity_confirmed"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func NewConversationContext(sessionID string) *ConversationContext {
	return &ConversationContext{
		SessionID:  sessionID,
		Challenges: []string{},
		UpdatedAt:  time.Now().UTC(),
	}
}

func (c *ConversationContext) RecordChallenge(challenge string) {
	challenge = strings.TrimSpace(challenge)
	if challenge == "" {
		return
	}
	c.Challenges = append(c.Challenges, challenge)
	c.touch()
}

func (c *ConversationContext) ApplyClientProfile(p ClientProfile) {
	c.RecordID = p.RecordID
	c.ClientName = p.Name
	c.Company = p.Company
	c.Email = p.Email
	c.Phone = p.Phone
	c.CompanySummary = p.Summary
	c.ResearchAboutCompany = p.Industry
	if p.Industry != "" {
		c.Industry = p.Industry
	}
	c.IdentityConfirmed = true
	c.touch()
}

func (c *ConversationContext) MarkGreeted() {
	c.GreetingDone = true
	c.touch()
}

// ResolveIndustry prefers the explicit hint, then what was learned about the company.
func (c *ConversationContext) ResolveIndustry(explicit string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if c == nil {
		return ""
	}
	if c.ResearchAboutCompany != "" {
		return c.ResearchAboutCompany
	}
	return c.Industry
}

func (c *ConversationContext) NameOr(fallback string) string {
	if c == nil || strings.TrimSpace(c.ClientName) == "" {
		return fallback
	}
	return c.ClientName
}

func (c *ConversationContext) CompanyOr(fallback string) string {
	if c == nil || strings.TrimSpace(c.Company) == "" {
		return fallback
	}
	return c.Company
}

func (c *ConversationContext) touch() {
	c.UpdatedAt = time.Now().UTC()
}
