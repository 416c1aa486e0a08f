package logging

import (
	"fmt"
	"sync"
	"time"

	tb "gopkg.in/telebot.v3"

	"github.com/MDharunPrasad/photo-kiosk/internal/quota"
)

// Notifier pushes storage alerts to venue admins over Telegram. The
// kiosk screen is often unattended, so the "storage full" notice has to
// reach a phone. Rate-limited so a misbehaving loop cannot flood chat.
type Notifier struct {
	Bot      *tb.Bot
	AdminIDs []int64

	mu   sync.Mutex
	last time.Time
	min  time.Duration
}

func NewNotifier(b *tb.Bot, admins []int64) *Notifier {
	return &Notifier{
		Bot:      b,
		AdminIDs: admins,
		min:      30 * time.Second,
	}
}

// StorageFull - the one-time interruptive notice from the write ladder.
func (n *Notifier) StorageFull(u quota.Usage) {
	n.Notify(fmt.Sprintf(
		"Kiosk storage is full (%.1f%% of %d MB). Delete or export sessions to resume saving.",
		u.Percentage, u.LimitBytes>>20))
}

func (n *Notifier) Notify(msg string) {
	if n == nil || n.Bot == nil || len(n.AdminIDs) == 0 {
		return
	}

	n.mu.Lock()
	if time.Since(n.last) < n.min {
		n.mu.Unlock()
		return
	}
	n.last = time.Now()
	n.mu.Unlock()

	for _, id := range n.AdminIDs {
		_, _ = n.Bot.Send(&tb.User{ID: id}, "🚨 "+msg)
	}
}
