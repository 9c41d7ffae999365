package notifications

import (
	"context"
	"errors"
	"net"
	"strings"

	"go.uber.org/zap"

	"github.com/sofiaringstrom/directus-extension-inline-form-interface/internal/i18n"
	appErrors "github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/errors"
	"github.com/sofiaringstrom/directus-extension-inline-form-interface/pkg/logger"
)

const (
	codeUnknown      = "UNKNOWN"
	codeNetworkError = "NETWORK_ERROR"
)

// ErrorCode derives the translation code for err.
func ErrorCode(err error) string {
	if code := appErrors.Code(err); code != "" {
		return code
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return codeNetworkError
	}
	return codeUnknown
}

// UnexpectedError raises an error notification describing err. The title is the
// translation of "errors.<CODE>"; unknown codes fall back to the generic message.
func UnexpectedError(err error, store Adder, t i18n.Translator) Notification {
	code := ErrorCode(err)

	title := code
	text := ""
	if t != nil {
		title = t.T("errors." + code)
		if title == "errors."+code {
			title = t.T("unexpected_error")
		}
	}
	if err != nil {
		text = err.Error()
	}

	n := Notification{
		Title:  title,
		Text:   text,
		Type:   TypeError,
		Code:   code,
		Dialog: true,
		Error:  err,
	}
	if store == nil {
		return n
	}
	return store.Add(n)
}

// Reporter forwards fetch failures to a notification store and the log.
type Reporter struct {
	store      Adder
	translator i18n.Translator
	log        *zap.Logger
}

// NewReporter constructs a Reporter. A nil store only logs.
func NewReporter(store Adder, translator i18n.Translator) *Reporter {
	return &Reporter{
		store:      store,
		translator: translator,
		log:        logger.WithModule("notifications"),
	}
}

// Report raises an unexpected error notification for err.
func (r *Reporter) Report(err error, context string) {
	if err == nil {
		return
	}

	n := UnexpectedError(err, r.store, r.translator)
	r.log.Warn("unexpected error",
		zap.String("context", strings.TrimSpace(context)),
		zap.String("code", n.Code),
		zap.Error(err),
	)
}
