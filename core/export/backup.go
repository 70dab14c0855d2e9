package export

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"

	"github.com/kmr-srbh/paper-desktop/core"
	"github.com/kmr-srbh/paper-desktop/core/class"
	"github.com/kmr-srbh/paper-desktop/core/settings"
)

type (
	Schedule interface {
		BackupDue(ctx context.Context, today core.Date) (bool, error)
		ScheduleNextBackup(ctx context.Context, today core.Date) (settings.Settings, error)
	}

	ClassReader interface {
		Profile(ctx context.Context) (class.Profile, error)
	}

	BackupResult struct {
		Ran      bool      `json:"ran"`
		Dir      string    `json:"dir"`
		Files    []string  `json:"files"`
		NextDate core.Date `json:"next_date"`
	}

	// Backup exports the attendance history when the scheduled backup date is reached.
	Backup struct {
		exporter  *Service
		schedule  Schedule
		class     ClassReader
		mailer    core.EmailService
		recipient string
		logger    core.Logger
	}
)

// NewBackup returns a backup job. The summary e-mail is skipped when mailer is nil or recipient is empty.
func NewBackup(
	exporter *Service,
	schedule Schedule,
	class ClassReader,
	mailer core.EmailService,
	recipient string,
	logger core.Logger,
) *Backup {
	return &Backup{
		exporter:  exporter,
		schedule:  schedule,
		class:     class,
		mailer:    mailer,
		recipient: recipient,
		logger:    logger,
	}
}

func (b *Backup) Run(ctx context.Context, today core.Date) (BackupResult, error) {
	due, err := b.schedule.BackupDue(ctx, today)
	if err != nil || !due {
		return BackupResult{}, err
	}

	files, err := b.exporter.CSV(ctx)
	if err != nil {
		return BackupResult{}, err
	}
	s, err := b.schedule.ScheduleNextBackup(ctx, today)
	if err != nil {
		return BackupResult{}, err
	}
	res := BackupResult{Ran: true, Dir: b.exporter.Dir(), Files: files, NextDate: s.BackupDate}
	b.logger.Info("backup done", map[string]interface{}{"files": len(files), "next": s.BackupDate.String()})

	if err = b.notify(ctx, today, res); err != nil {
		b.logger.Error("sending backup e-mail", err)
	}
	return res, nil
}

func (b *Backup) notify(ctx context.Context, today core.Date, res BackupResult) error {
	if b.mailer == nil || b.recipient == "" {
		return nil
	}
	to, err := mail.ParseAddress(b.recipient)
	if err != nil {
		return err
	}

	className := "class"
	if p, err := b.class.Profile(ctx); err == nil && p.HasClass() {
		className = p.Name.String
	} else if err != nil && !errors.Is(err, class.ErrNoPIN) {
		return err
	}

	names := make([]string, 0, len(res.Files))
	for _, f := range res.Files {
		names = append(names, filepath.Base(f))
	}
	msg := &core.EmailMessage{
		To:           []mail.Address{*to},
		Subject:      fmt.Sprintf("%s attendance backup %s", className, today.Label()),
		TemplateName: "backup",
		TemplateData: map[string]interface{}{
			"Class": className,
			"Date":  today.Label(),
			"Dir":   res.Dir,
			"Files": names,
		},
	}
	for _, f := range res.Files {
		if err = msg.AttachFile(f, "text/csv"); err != nil {
			return err
		}
	}
	b.mailer.SendMessages(msg)
	return nil
}
