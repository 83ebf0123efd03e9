package hooks

import (
	"sync"

	"portfolio-server/db"
	"portfolio-server/types"
)

const (
	HealthCheck          = "health_check"
	ContactSubmitted     = "contact_submitted"
	CommentCreated       = "comment_created"
	NewsletterSubscribed = "newsletter_subscribed"
)

type NewsletterSubscribedParams struct {
	Subscriber   *db.NewsletterSubscriber
	ConfirmToken string
}

type HookParams struct {
	Contact *db.ContactSubmission
	Comment *db.Comment

	NewsletterSubscribedParams *NewsletterSubscribedParams
}

type Hook func(params HookParams) *types.ApiError

var (
	mu    sync.RWMutex
	hooks = make(map[string]Hook)
)

func RegisterHook(name string, hook Hook) {
	mu.Lock()
	defer mu.Unlock()
	hooks[name] = hook
}

// ExecHook runs the hook registered under name. Unregistered hooks are a no-op.
func ExecHook(name string, params HookParams) *types.ApiError {
	mu.RLock()
	hook, ok := hooks[name]
	mu.RUnlock()

	if !ok {
		return nil
	}
	return hook(params)
}

// Reset removes every hook. Used by tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	hooks = make(map[string]Hook)
}
