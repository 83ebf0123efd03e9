package db

import (
	"strings"
	"time"
)

type User struct {
	Id           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"isAdmin"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type AuthToken struct {
	Id        string     `db:"id"`
	UserId    string     `db:"user_id"`
	TokenHash string     `db:"token_hash"`
	CreatedAt time.Time  `db:"created_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

type Project struct {
	Id           string    `db:"id" json:"id"`
	Slug         string    `db:"slug" json:"slug"`
	Title        string    `db:"title" json:"title"`
	Summary      string    `db:"summary" json:"summary"`
	BodyMarkdown string    `db:"body_markdown" json:"bodyMarkdown"`
	Category     string    `db:"category" json:"category"`
	TechStack    string    `db:"tech_stack" json:"-"`
	Tech         []string  `db:"-" json:"tech"`
	RepoUrl      string    `db:"repo_url" json:"repoUrl"`
	DemoUrl      string    `db:"demo_url" json:"demoUrl"`
	ImageUrl     string    `db:"image_url" json:"imageUrl"`
	Featured     bool      `db:"featured" json:"featured"`
	Published    bool      `db:"published" json:"published"`
	SortOrder    int       `db:"sort_order" json:"sortOrder"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// tech_stack is stored as a comma list; Tech is what callers see.
func (p *Project) hydrate() {
	p.Tech = splitList(p.TechStack, ",")
}

func (p *Project) dehydrate() {
	p.TechStack = joinList(p.Tech, ",")
	p.hydrate()
}

type Skill struct {
	Id        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Level     int       `db:"level" json:"level"`
	Years     int       `db:"years" json:"years"`
	Icon      string    `db:"icon" json:"icon"`
	SortOrder int       `db:"sort_order" json:"sortOrder"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

type SkillCategory struct {
	Category string `db:"category" json:"category"`
	Count    int    `db:"count" json:"count"`
}

type Experience struct {
	Id          string     `db:"id" json:"id"`
	Company     string     `db:"company" json:"company"`
	Role        string     `db:"role" json:"role"`
	Location    string     `db:"location" json:"location"`
	StartDate   time.Time  `db:"start_date" json:"startDate"`
	EndDate     *time.Time `db:"end_date" json:"endDate"`
	Description string     `db:"description" json:"description"`
	Highlights  string     `db:"highlights" json:"-"`
	Bullets     []string   `db:"-" json:"highlights"`
	SortOrder   int        `db:"sort_order" json:"sortOrder"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

func (e *Experience) Current() bool {
	return e.EndDate == nil
}

func (e *Experience) hydrate() {
	e.Bullets = splitList(e.Highlights, "\n")
}

func (e *Experience) dehydrate() {
	e.Highlights = joinList(e.Bullets, "\n")
	e.hydrate()
}

type Education struct {
	Id          string     `db:"id" json:"id"`
	Institution string     `db:"institution" json:"institution"`
	Degree      string     `db:"degree" json:"degree"`
	Field       string     `db:"field" json:"field"`
	StartDate   time.Time  `db:"start_date" json:"startDate"`
	EndDate     *time.Time `db:"end_date" json:"endDate"`
	Description string     `db:"description" json:"description"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

type Certification struct {
	Id            string     `db:"id" json:"id"`
	Name          string     `db:"name" json:"name"`
	Issuer        string     `db:"issuer" json:"issuer"`
	IssuedAt      time.Time  `db:"issued_at" json:"issuedAt"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expiresAt"`
	CredentialUrl string     `db:"credential_url" json:"credentialUrl"`
	CreatedAt     time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updatedAt"`
}

func (c *Certification) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && c.ExpiresAt.Before(now)
}

type ContactStatus string

const (
	ContactStatusNew      ContactStatus = "new"
	ContactStatusRead     ContactStatus = "read"
	ContactStatusArchived ContactStatus = "archived"
)

func (s ContactStatus) Valid() bool {
	switch s {
	case ContactStatusNew, ContactStatusRead, ContactStatusArchived:
		return true
	}
	return false
}

type ContactSubmission struct {
	Id        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Email     string        `db:"email" json:"email"`
	Subject   string        `db:"subject" json:"subject"`
	Message   string        `db:"message" json:"message"`
	IpHash    string        `db:"ip_hash" json:"-"`
	UserAgent string        `db:"user_agent" json:"userAgent"`
	Status    ContactStatus `db:"status" json:"status"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
}

// ModerationStatus applies to visitor-owned content: comments and guestbook entries.
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

func (s ModerationStatus) Valid() bool {
	switch s {
	case ModerationPending, ModerationApproved, ModerationRejected:
		return true
	}
	return false
}

type Comment struct {
	Id          string           `db:"id" json:"id"`
	PostSlug    string           `db:"post_slug" json:"postSlug"`
	ParentId    *string          `db:"parent_id" json:"parentId"`
	AuthorName  string           `db:"author_name" json:"authorName"`
	AuthorEmail string           `db:"author_email" json:"-"`
	Body        string           `db:"body" json:"body"`
	BodyHtml    string           `db:"body_html" json:"bodyHtml"`
	Status      ModerationStatus `db:"status" json:"status"`
	IpHash      string           `db:"ip_hash" json:"-"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
}

// CommentThread is an approved comment with its approved replies nested below it.
type CommentThread struct {
	*Comment
	Replies []*CommentThread `json:"replies"`
}

type GuestbookEntry struct {
	Id        string           `db:"id" json:"id"`
	Name      string           `db:"name" json:"name"`
	Message   string           `db:"message" json:"message"`
	Website   string           `db:"website" json:"website"`
	Status    ModerationStatus `db:"status" json:"status"`
	IpHash    string           `db:"ip_hash" json:"-"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
}

type SubscriberStatus string

const (
	SubscriberPending      SubscriberStatus = "pending"
	SubscriberConfirmed    SubscriberStatus = "confirmed"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
)

type NewsletterSubscriber struct {
	Id               string           `db:"id" json:"id"`
	Email            string           `db:"email" json:"email"`
	Status           SubscriberStatus `db:"status" json:"status"`
	ConfirmTokenHash string           `db:"confirm_token_hash" json:"-"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	ConfirmedAt      *time.Time       `db:"confirmed_at" json:"confirmedAt"`
}

type PageView struct {
	Id          string    `db:"id"`
	Slug        string    `db:"slug"`
	VisitorHash string    `db:"visitor_hash"`
	Referrer    string    `db:"referrer"`
	CreatedAt   time.Time `db:"created_at"`
}

type PageViewStats struct {
	Slug           string `db:"slug" json:"slug"`
	Views          int    `db:"views" json:"views"`
	UniqueVisitors int    `db:"unique_visitors" json:"uniqueVisitors"`
}

func splitList(s, sep string) []string {
	res := []string{}
	for _, part := range strings.Split(s, sep) {
		part = strings.TrimSpace(part)
		if part != "" {
			res = append(res, part)
		}
	}
	return res
}

func joinList(items []string, sep string) string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return strings.Join(cleaned, sep)
}

func now() time.Time {
	return time.Now().UTC()
}
