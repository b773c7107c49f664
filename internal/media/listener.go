// Package media watches desktop notifications from music players and
// publishes the current track on the events bus.
//
// It monitors the session D-Bus for org.freedesktop.Notifications traffic:
// Notify calls carry the track, the method reply carries the notification
// id, and NotificationClosed ends playback display for that id.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/godbus/dbus/v5"
	"github.com/sadopc/feet/internal/events"
)

const (
	notifyIntf    = "org.freedesktop.Notifications"
	notifyMember  = "Notify"
	closedMember  = "NotificationClosed"
	becomeMonitor = "org.freedesktop.DBus.Monitoring.BecomeMonitor"

	UnknownArtist = "Unknown Artist"
)

// DefaultMusicApps lists desktop players plus the Android package names
// that phone bridges forward notifications under.
var DefaultMusicApps = []string{
	"spotify",
	"youtube music",
	"apple music",
	"amazon music",
	"pandora",
	"deezer",
	"tidal",
	"rhythmbox",
	"lollypop",
	"amberol",
	"com.spotify.music",
	"com.google.android.youtube",
	"com.google.android.apps.youtube.music",
	"com.apple.android.music",
	"com.amazon.mp3",
	"com.pandora.android",
	"deezer.android.app",
	"com.aspiro.tidal",
}

type pendingCall struct {
	sender string
	serial uint32
}

type Listener struct {
	bus    *events.Bus
	logger *log.Logger
	apps   map[string]bool

	mu      sync.Mutex
	pending map[pendingCall]string // Notify call → app name
	active  map[uint32]string      // notification id → app name
}

// NewListener builds a listener that accepts notifications from apps
// (matched case-insensitively). An empty list means DefaultMusicApps.
func NewListener(bus *events.Bus, logger *log.Logger, apps []string) *Listener {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if len(apps) == 0 {
		apps = DefaultMusicApps
	}
	allowed := make(map[string]bool, len(apps))
	for _, a := range apps {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			allowed[a] = true
		}
	}
	return &Listener{
		bus:     bus,
		logger:  logger.WithPrefix("media"),
		apps:    allowed,
		pending: make(map[pendingCall]string),
		active:  make(map[uint32]string),
	}
}

// IsMusicApp reports whether app is on the allow-list.
func (l *Listener) IsMusicApp(app string) bool {
	return l.apps[strings.ToLower(strings.TrimSpace(app))]
}

// Posted handles a notification from app. Notifications from other apps
// and ones without a track title are ignored.
func (l *Listener) Posted(app, title, text string) bool {
	if !l.IsMusicApp(app) {
		return false
	}
	track := strings.TrimSpace(title)
	if track == "" {
		return false
	}
	artist := strings.TrimSpace(text)
	if artist == "" {
		artist = UnknownArtist
	}
	l.logger.Debug("now playing", "app", app, "track", track, "artist", artist)
	l.bus.Publish(events.Event{Topic: events.MediaUpdate, App: app, Track: track, Artist: artist})
	return true
}

// Removed handles a notification from app going away.
func (l *Listener) Removed(app string) bool {
	if !l.IsMusicApp(app) {
		return false
	}
	l.logger.Debug("music notification removed", "app", app)
	l.bus.Publish(events.Event{Topic: events.MediaClear, App: app})
	return true
}

// Run connects to the session bus and processes notification traffic until
// ctx is done. Without a session bus it logs a warning and returns nil, so
// the rest of the app simply never sees media events.
func (l *Listener) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		l.logger.Warn("no session bus, media listener disabled", "err", err)
		return nil
	}
	defer conn.Close()

	rules := []string{
		fmt.Sprintf("type='method_call',interface='%s',member='%s'", notifyIntf, notifyMember),
		"type='method_return'",
		fmt.Sprintf("type='signal',interface='%s',member='%s'", notifyIntf, closedMember),
	}
	if err := conn.BusObject().Call(becomeMonitor, 0, rules, uint32(0)).Err; err != nil {
		l.logger.Warn("cannot monitor notifications, media listener disabled", "err", err)
		return nil
	}

	msgs := make(chan *dbus.Message, 32)
	conn.Eavesdrop(msgs)
	l.logger.Info("listening for music notifications", "apps", len(l.apps))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			l.Handle(msg)
		}
	}
}

// Handle processes one monitored D-Bus message.
func (l *Listener) Handle(msg *dbus.Message) {
	switch msg.Type {
	case dbus.TypeMethodCall:
		if header(msg, dbus.FieldInterface) != notifyIntf || header(msg, dbus.FieldMember) != notifyMember {
			return
		}
		l.handleNotify(msg)
	case dbus.TypeMethodReply:
		l.handleReply(msg)
	case dbus.TypeSignal:
		if header(msg, dbus.FieldInterface) != notifyIntf || header(msg, dbus.FieldMember) != closedMember {
			return
		}
		l.handleClosed(msg)
	}
}

// Notify(app_name s, replaces_id u, app_icon s, summary s, body s, ...)
func (l *Listener) handleNotify(msg *dbus.Message) {
	if len(msg.Body) < 5 {
		return
	}
	app, _ := msg.Body[0].(string)
	replaces, _ := msg.Body[1].(uint32)
	summary, _ := msg.Body[3].(string)
	body, _ := msg.Body[4].(string)

	if !l.Posted(app, summary, body) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if replaces != 0 {
		l.active[replaces] = app
	}
	l.pending[pendingCall{sender: header(msg, dbus.FieldSender), serial: msg.Serial()}] = app
}

func (l *Listener) handleReply(msg *dbus.Message) {
	v, ok := msg.Headers[dbus.FieldReplySerial]
	if !ok || len(msg.Body) != 1 {
		return
	}
	serial, _ := v.Value().(uint32)
	id, ok := msg.Body[0].(uint32)
	if !ok {
		return
	}
	key := pendingCall{sender: header(msg, dbus.FieldDestination), serial: serial}

	l.mu.Lock()
	defer l.mu.Unlock()
	app, ok := l.pending[key]
	if !ok {
		return
	}
	delete(l.pending, key)
	l.active[id] = app
}

// NotificationClosed(id u, reason u)
func (l *Listener) handleClosed(msg *dbus.Message) {
	if len(msg.Body) < 1 {
		return
	}
	id, ok := msg.Body[0].(uint32)
	if !ok {
		return
	}
	l.mu.Lock()
	app, ok := l.active[id]
	delete(l.active, id)
	l.mu.Unlock()
	if ok {
		l.Removed(app)
	}
}

func header(msg *dbus.Message, field dbus.HeaderField) string {
	v, ok := msg.Headers[field]
	if !ok {
		return ""
	}
	switch s := v.Value().(type) {
	case string:
		return s
	case dbus.ObjectPath:
		return string(s)
	}
	return ""
}
