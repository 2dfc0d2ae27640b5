package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/mockline/scheduler/pkg/errors"
	"github.com/mockline/scheduler/pkg/logger"
)

type TelegramConfig struct {
	Token        string        `yaml:"token"`
	PollInterval time.Duration `yaml:"pollInterval"`

	// Chats maps internal user ids to telegram chat ids. Users without an
	// entry are skipped, not failed: onboarding is out of band.
	Chats map[string]int64 `yaml:"chats"`
}

func NewTelegramDispatcher(cfg TelegramConfig, log logger.Logger) (*TelegramDispatcher, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.Token,
		Poller: &telebot.LongPoller{Timeout: cfg.PollInterval},
	})
	if err != nil {
		return nil, errors.WrapFail(err, "create telegram bot")
	}

	return &TelegramDispatcher{
		bot:   bot,
		chats: cfg.Chats,
		log:   log.With("telegram_dispatcher"),
	}, nil
}

type TelegramDispatcher struct {
	bot   *telebot.Bot
	chats map[string]int64
	log   logger.Logger
}

func (d *TelegramDispatcher) NotifyAssigned(_ context.Context, n Notice) error {
	msg := fmt.Sprintf(
		"Interview `%s` is scheduled for %s.",
		n.InterviewID, n.StartsAt.UTC().Format(time.DateTime),
	)
	if n.JoinURL != "" {
		msg += "\nJoin link: " + n.JoinURL
	}

	return d.sendBoth(n, msg)
}

func (d *TelegramDispatcher) NotifyConfirmed(_ context.Context, n Notice) error {
	// Both sends are independent: a failure on one side must not block
	// or re-trigger the other.
	tutorMsg := fmt.Sprintf(
		"Confirmed: mock interview `%s` with %s on %s.\nJoin link: %s",
		n.InterviewID, n.StudentName, n.StartsAt.UTC().Format(time.DateTime), n.JoinURL,
	)
	studentMsg := fmt.Sprintf(
		"Confirmed: your mock interview `%s` with %s on %s.\nJoin link: %s",
		n.InterviewID, n.TutorName, n.StartsAt.UTC().Format(time.DateTime), n.JoinURL,
	)

	return errors.Join(
		errors.WrapFail(d.send(n.TutorID, tutorMsg), "notify tutor"),
		errors.WrapFail(d.send(n.StudentID, studentMsg), "notify student"),
	)
}

func (d *TelegramDispatcher) NotifyCancelled(_ context.Context, n Notice) error {
	msg := fmt.Sprintf("Interview `%s` has been cancelled.", n.InterviewID)
	return d.sendBoth(n, msg)
}

func (d *TelegramDispatcher) sendBoth(n Notice, msg string) error {
	return errors.Join(
		errors.WrapFail(d.send(n.TutorID, msg), "notify tutor"),
		errors.WrapFail(d.send(n.StudentID, msg), "notify student"),
	)
}

func (d *TelegramDispatcher) send(userID string, msg string) error {
	chat, ok := d.chats[userID]
	if !ok {
		d.log.Debugf("no telegram chat for user %q, skipping", userID)
		return nil
	}

	_, err := d.bot.Send(recipient(chat), msg, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}

type recipient int64

func (r recipient) Recipient() string {
	return strconv.FormatInt(int64(r), 10)
}
