package desktop

import (
	"github.com/0xAX/notificator"
	"go.uber.org/zap"
)

// Notifier pushes desktop notifications through the platform's notification
// tool (notify-send, terminal-notifier/osascript, growlnotify).
type Notifier struct {
	notify *notificator.Notificator
	logger *zap.Logger
}

// NewNotifier creates a Notifier that labels notifications with appName.
func NewNotifier(appName string, logger *zap.Logger) *Notifier {
	return &Notifier{
		notify: notificator.New(notificator.Options{
			AppName: appName,
		}),
		logger: logger.Named("notify"),
	}
}

// Notify shows a normal-urgency notification.
func (n *Notifier) Notify(title, message string) error {
	n.logger.Debug("Desktop notification", zap.String("title", title), zap.String("message", message))
	return n.notify.Push(title, message, "", notificator.UR_NORMAL)
}

// Critical shows a critical-urgency notification. Used for fatal startup
// errors when no window exists yet.
func (n *Notifier) Critical(title, message string) error {
	return n.notify.Push(title, message, "", notificator.UR_CRITICAL)
}
