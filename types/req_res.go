package types

import (
	"time"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponse struct {
	Token  string `json:"token"`
	UserId string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`

	// honeypot, real visitors never see this field
	Website string `json:"website"`
}

type CreatedResponse struct {
	Id      string `json:"id"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

type NewsletterRequest struct {
	Email string `json:"email"`
}

type NewsletterResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type CreateCommentRequest struct {
	PostSlug    string `json:"postSlug"`
	ParentId    string `json:"parentId"`
	AuthorName  string `json:"authorName"`
	AuthorEmail string `json:"authorEmail"`
	Body        string `json:"body"`
}

type GuestbookRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Website string `json:"website"`
}

type ModerationRequest struct {
	Status string `json:"status"`
}

type ContactStatusRequest struct {
	Status string `json:"status"`
}

type PageViewRequest struct {
	Referrer string `json:"referrer"`
}

type ProjectRequest struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Summary      string   `json:"summary"`
	BodyMarkdown string   `json:"bodyMarkdown"`
	Category     string   `json:"category"`
	Tech         []string `json:"tech"`
	RepoUrl      string   `json:"repoUrl"`
	DemoUrl      string   `json:"demoUrl"`
	ImageUrl     string   `json:"imageUrl"`
	Featured     bool     `json:"featured"`
	Published    *bool    `json:"published"`
	SortOrder    int      `json:"sortOrder"`
}

type SkillRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Level     int    `json:"level"`
	Years     int    `json:"years"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sortOrder"`
}

type ExperienceRequest struct {
	Company     string     `json:"company"`
	Role        string     `json:"role"`
	Location    string     `json:"location"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `json:"description"`
	Highlights  []string   `json:"highlights"`
	SortOrder   int        `json:"sortOrder"`
}

type EducationRequest struct {
	Institution string     `json:"institution"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Description string     `json:"description"`
}

type CertificationRequest struct {
	Name          string     `json:"name"`
	Issuer        string     `json:"issuer"`
	IssuedAt      time.Time  `json:"issuedAt"`
	ExpiresAt     *time.Time `json:"expiresAt"`
	CredentialUrl string     `json:"credentialUrl"`
}

type BlockIpRequest struct {
	Ip       string `json:"ip"`
	Reason   string `json:"reason"`
	Duration string `json:"duration"` // Go duration, empty = permanent
}

type UnblockIpRequest struct {
	Ip string `json:"ip"`
}

type ChatMessage struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

type ChatRequest struct {
	Messages  []ChatMessage `json:"messages"`
	SessionId string        `json:"sessionId"`
}

type ChatSource struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Url   string `json:"url,omitempty"`
}

type ChatResponse struct {
	Reply    string       `json:"reply"`
	Sources  []ChatSource `json:"sources"`
	Provider string       `json:"provider"`
	Model    string       `json:"model,omitempty"`
	Fallback bool         `json:"fallback"`
}
