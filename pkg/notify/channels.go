package notify

import (
	"errors"
	"net/url"
	"strings"

	ntfy "github.com/go-pkgz/notify"

	"github.com/dkpro/dkpro-statistics-sub001/pkg/config"
)

// channel is one delivery target with the renderer matching its wire format.
type channel struct {
	notifier ntfy.Notifier
	dest     string
	render   func(notice) (string, error)
}

// disabledError marks a channel that is skipped instead of failing startup.
type disabledError struct{ reason string }

func (e *disabledError) Error() string { return e.reason }

// builders maps notify_channels entries to constructors.
var builders = map[string]func(v *config.Values) ([]channel, error){
	"telegram": telegramChannels,
	"email":    emailChannels,
	"slack":    slackChannels,
	"webhook":  webhookChannels,
	"custom":   scriptChannels,
}

// newTelegram verifies the bot token against the telegram api. replaced in tests.
var newTelegram = func(token string) (ntfy.Notifier, error) {
	return ntfy.NewTelegram(ntfy.TelegramParams{Token: token})
}

func telegramChannels(v *config.Values) ([]channel, error) {
	if v.NotifyTelegramToken == "" || v.NotifyTelegramChat == "" {
		return nil, errors.New("notify_telegram_token and notify_telegram_chat are required")
	}
	tg, err := newTelegram(v.NotifyTelegramToken)
	if err != nil {
		// the api may be unreachable, notifications are optional
		return nil, &disabledError{reason: strings.ReplaceAll(err.Error(), v.NotifyTelegramToken, "[REDACTED]")}
	}
	dest := "telegram:" + v.NotifyTelegramChat + "?parseMode=HTML"
	return []channel{{notifier: tg, dest: dest, render: renderHTML}}, nil
}

func emailChannels(v *config.Values) ([]channel, error) {
	switch {
	case v.NotifySMTPHost == "":
		return nil, errors.New("notify_smtp_host is required")
	case v.NotifyEmailFrom == "":
		return nil, errors.New("notify_email_from is required")
	case len(v.NotifyEmailTo) == 0:
		return nil, errors.New("notify_email_to is required")
	}
	em := ntfy.NewEmail(ntfy.SMTPParams{
		Host:     v.NotifySMTPHost,
		Port:     v.NotifySMTPPort,
		Username: v.NotifySMTPUsername,
		Password: v.NotifySMTPPassword,
		StartTLS: v.NotifySMTPStartTLS,
	})
	q := url.Values{"from": {v.NotifyEmailFrom}, "subject": {"ualpha agreement report"}}
	dest := "mailto:" + strings.Join(v.NotifyEmailTo, ",") + "?" + q.Encode()
	return []channel{{notifier: em, dest: dest, render: renderText}}, nil
}

func slackChannels(v *config.Values) ([]channel, error) {
	if v.NotifySlackToken == "" || v.NotifySlackChannel == "" {
		return nil, errors.New("notify_slack_token and notify_slack_channel are required")
	}
	return []channel{{notifier: ntfy.NewSlack(v.NotifySlackToken), dest: "slack:" + v.NotifySlackChannel, render: renderText}}, nil
}

func webhookChannels(v *config.Values) ([]channel, error) {
	if len(v.NotifyWebhookURLs) == 0 {
		return nil, errors.New("notify_webhook_urls is required")
	}
	wh := ntfy.NewWebhook(ntfy.WebhookParams{})
	res := make([]channel, 0, len(v.NotifyWebhookURLs))
	for _, u := range v.NotifyWebhookURLs {
		res = append(res, channel{notifier: wh, dest: u, render: renderJSON})
	}
	return res, nil
}

func scriptChannels(v *config.Values) ([]channel, error) {
	if v.NotifyCustomScript == "" {
		return nil, errors.New("notify_custom_script is required")
	}
	return []channel{{notifier: scriptNotifier{}, dest: v.NotifyCustomScript, render: renderJSON}}, nil
}

// describe lists channel targets without secrets, for debug logging.
func describe(chs []channel) string {
	parts := make([]string, 0, len(chs))
	for _, ch := range chs {
		parts = append(parts, ch.notifier.Schema())
	}
	return strings.Join(parts, ",")
}
