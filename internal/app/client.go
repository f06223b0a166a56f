package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/example/ec-client-core/internal/auth"
	"github.com/example/ec-client-core/internal/domain/cart"
	"github.com/example/ec-client-core/internal/domain/checkout"
	"github.com/example/ec-client-core/internal/domain/notification"
	"github.com/example/ec-client-core/internal/domain/tracking"
	"github.com/example/ec-client-core/internal/gateway"
	"github.com/example/ec-client-core/internal/infrastructure/cache"
)

// ErrStaleResponse marks a backend response that arrived after the
// originating view was torn down. It is discarded without touching
// state and never surfaced to the user.
var ErrStaleResponse = errors.New("response arrived after the view closed")

// ErrNotTracking is returned for order operations that need an open
// tracking session when none exists.
var ErrNotTracking = errors.New("order has no open tracking session")

const defaultSimInterval = 15 * time.Second

// Deps are the collaborators a Client is wired with. Cache and Tokens
// are optional.
type Deps struct {
	Carts  *cart.Service
	Orders gateway.OrderGateway
	Notes  gateway.NotificationGateway
	Feed   tracking.Feed
	Cache  cache.StatusCache
	Tokens *auth.TokenKeeper
}

type Config struct {
	// SimulatorInterval overrides the fallback progression cadence.
	SimulatorInterval time.Duration

	// DisableSimulator turns the fallback off entirely; tracking then
	// moves only on pushed events.
	DisableSimulator bool
}

// Client is the application facade: UI commands come in, domain calls
// go out. One Client per signed-in user session.
type Client struct {
	userID string
	deps   Deps
	cfg    Config
	center *notification.Center

	mu       sync.Mutex
	sessions map[string]*tracking.Session
}

func NewClient(userID string, deps Deps, cfg Config) *Client {
	return &Client{
		userID:   userID,
		deps:     deps,
		cfg:      cfg,
		center:   notification.NewCenter(),
		sessions: make(map[string]*tracking.Session),
	}
}

// ---- Cart commands ----

func (c *Client) AddToCart(ctx context.Context, productID string, price, discountPrice int) error {
	return c.deps.Carts.AddItem(ctx, c.userID, productID, price, discountPrice)
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	return c.deps.Carts.RemoveItem(ctx, c.userID, productID)
}

func (c *Client) SetQuantity(ctx context.Context, productID string, quantity int) error {
	return c.deps.Carts.SetQuantity(ctx, c.userID, productID, quantity)
}

func (c *Client) SaveForLater(ctx context.Context, productID string) error {
	return c.deps.Carts.SaveForLater(ctx, c.userID, productID)
}

func (c *Client) MoveToActive(ctx context.Context, productID string) error {
	return c.deps.Carts.MoveToActive(ctx, c.userID, productID)
}

func (c *Client) Cart() (*cart.Cart, error) {
	return c.deps.Carts.Get(c.userID)
}

// ---- Checkout ----

// Checkout validates shipping, builds a draft from the current cart and
// submits it. On success the cart is cleared and the order id returned
// so the UI can open a tracking view. A response that lands after the
// checkout view's context was cancelled is discarded: the cart stays
// intact and ErrStaleResponse is returned.
func (c *Client) Checkout(ctx context.Context, shipping checkout.ShippingInfo, method checkout.PaymentMethod) (string, error) {
	if c.deps.Tokens != nil {
		if _, err := c.deps.Tokens.Bearer(); err != nil {
			return "", err
		}
	}

	validated, err := checkout.ValidateShipping(shipping)
	if err != nil {
		return "", err
	}

	crt, err := c.Cart()
	if err != nil {
		return "", err
	}

	draft, err := checkout.BuildDraft(crt, validated, method)
	if err != nil {
		return "", err
	}

	orderID, err := c.deps.Orders.CreateOrder(ctx, draft)
	if err != nil {
		return "", err
	}
	if ctx.Err() != nil {
		return "", ErrStaleResponse
	}

	if err := c.deps.Carts.Clear(ctx, c.userID); err != nil {
		log.Printf("[Client] Failed to clear cart after order %s: %v", orderID, err)
	}
	c.warmCache(orderID, tracking.StatusPending)

	return orderID, nil
}

// ---- Tracking ----

// OpenTracking returns the open session for an order or builds a new
// one: seed the head from the authoritative fetch (cache as a degraded
// substitute), subscribe the push feed, arm the simulator.
func (c *Client) OpenTracking(ctx context.Context, orderID string) (*tracking.Session, error) {
	c.mu.Lock()
	if existing, ok := c.sessions[orderID]; ok && existing.State() != tracking.SessionClosed {
		c.mu.Unlock()
		return existing, nil
	}
	c.mu.Unlock()

	seed := c.seedEvent(ctx, orderID)
	if ctx.Err() != nil {
		return nil, ErrStaleResponse
	}

	session := tracking.NewSession(orderID)
	opts := tracking.Options{
		Feed:              c.deps.Feed,
		SimulatorInterval: c.simInterval(),
		OnApply: func(e tracking.StatusEvent) {
			c.warmCache(orderID, e.Status)
		},
	}
	if err := session.Open(opts, seed); err != nil {
		return nil, err
	}

	// Re-check under the lock: a concurrent open may have raced us here.
	// The loser tears its session down so nothing leaks.
	c.mu.Lock()
	if existing, ok := c.sessions[orderID]; ok && existing.State() != tracking.SessionClosed {
		c.mu.Unlock()
		session.Close()
		return existing, nil
	}
	c.sessions[orderID] = session
	c.mu.Unlock()
	return session, nil
}

// AnnotateOrder records a vendor/admin note against an open tracking
// session. Notes land in the session's audit log, beside the ranked
// timeline, never in it.
func (c *Client) AnnotateOrder(orderID, actor, note string) error {
	c.mu.Lock()
	session, ok := c.sessions[orderID]
	c.mu.Unlock()

	if !ok || session.State() == tracking.SessionClosed {
		return ErrNotTracking
	}
	session.Annotate(actor, note)
	return nil
}

// OrderAudit returns the annotations recorded against an open tracking
// session.
func (c *Client) OrderAudit(orderID string) ([]tracking.AuditEntry, error) {
	c.mu.Lock()
	session, ok := c.sessions[orderID]
	c.mu.Unlock()

	if !ok {
		return nil, ErrNotTracking
	}
	return session.Audit(), nil
}

// CloseTracking tears the session down; a later OpenTracking builds a
// fresh one.
func (c *Client) CloseTracking(orderID string) {
	c.mu.Lock()
	session, ok := c.sessions[orderID]
	delete(c.sessions, orderID)
	c.mu.Unlock()

	if ok {
		session.Close()
	}
}

// Close tears down every open tracking session.
func (c *Client) Close() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]*tracking.Session)
	c.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}

func (c *Client) seedEvent(ctx context.Context, orderID string) *tracking.StatusEvent {
	snap, err := c.deps.Orders.FetchOrder(ctx, orderID)
	if err == nil && snap != nil && snap.Status.Valid() {
		return &tracking.StatusEvent{
			Status:    snap.Status,
			Timestamp: time.Now(),
			SourceID:  "fetch",
		}
	}
	if err != nil {
		log.Printf("[Client] Fetch failed for order %s, trying cached status: %v", orderID, err)
	}

	if c.deps.Cache != nil {
		cached, cerr := c.deps.Cache.GetStatus(ctx, orderID)
		if cerr == nil && tracking.Status(cached).Valid() {
			return &tracking.StatusEvent{
				Status:    tracking.Status(cached),
				Timestamp: time.Now(),
				SourceID:  "cache",
			}
		}
	}
	return nil
}

func (c *Client) simInterval() time.Duration {
	if c.cfg.DisableSimulator {
		return 0
	}
	if c.cfg.SimulatorInterval > 0 {
		return c.cfg.SimulatorInterval
	}
	return defaultSimInterval
}

func (c *Client) warmCache(orderID string, status tracking.Status) {
	if c.deps.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.deps.Cache.SetStatus(ctx, orderID, string(status)); err != nil {
		log.Printf("[Client] Failed to cache status for order %s: %v", orderID, err)
	}
}

// ---- Notifications ----

// RefreshNotifications reloads the inbox wholesale from the backend.
func (c *Client) RefreshNotifications(ctx context.Context) error {
	list, err := c.deps.Notes.List(ctx)
	if err != nil {
		return err
	}
	c.center.Reload(list)
	return nil
}

func (c *Client) Notifications() []notification.Notification {
	return c.center.All()
}

func (c *Client) UnreadNotifications() int {
	return c.center.Unread()
}

// MarkNotificationRead tells the backend first and flips the local
// flag only on success, so a failed call can simply be retried.
func (c *Client) MarkNotificationRead(ctx context.Context, id string) error {
	if !c.center.IsUnread(id) {
		return nil
	}
	if err := c.deps.Notes.MarkRead(ctx, id); err != nil {
		return err
	}
	c.center.MarkRead(id)
	return nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	c.center.MarkAllRead()
	return c.deps.Notes.MarkAllRead(ctx)
}
