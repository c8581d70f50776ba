package session

import (
	"context"
	"log/slog"
)

// NoticeHandler is a slog.Handler that copies WARN and ERROR records onto a
// session as notices and passes every record on to next.
type NoticeHandler struct {
	next    slog.Handler
	session *Session
	attrs   []slog.Attr
}

func NewNoticeHandler(next slog.Handler, s *Session) *NoticeHandler {
	return &NoticeHandler{next: next, session: s}
}

func (h *NoticeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= slog.LevelWarn || h.next.Enabled(ctx, level)
}

func (h *NoticeHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
		for _, a := range h.attrs {
			attrs[a.Key] = attrValue(a)
		}
		r.Attrs(func(a slog.Attr) bool {
			attrs[a.Key] = attrValue(a)
			return true
		})
		h.session.AddNotice(Notice{
			Time:    r.Time,
			Level:   r.Level.String(),
			Message: r.Message,
			Attrs:   attrs,
		})
	}

	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *NoticeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &NoticeHandler{next: h.next.WithAttrs(attrs), session: h.session, attrs: merged}
}

// WithGroup only affects the chained handler; notices keep flat attributes.
func (h *NoticeHandler) WithGroup(name string) slog.Handler {
	return &NoticeHandler{next: h.next.WithGroup(name), session: h.session, attrs: h.attrs}
}

func attrValue(a slog.Attr) any {
	v := a.Value.Resolve()
	if err, ok := v.Any().(error); ok {
		return err.Error()
	}
	return v.Any()
}
