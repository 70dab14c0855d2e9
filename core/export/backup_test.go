package export_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmr-srbh/paper-desktop/core/export"
	"github.com/kmr-srbh/paper-desktop/services/email"
	"github.com/kmr-srbh/paper-desktop/tests"
)

func TestBackup_Run(t *testing.T) {
	env := testutil.NewEnv(t)
	ctx := context.Background()
	testutil.FreezeToday(t, day1)
	env.CreateClass(t)
	env.AddStudents(t, "Alice", "Bob")
	env.Record(t, day1, "Alice")
	emailsvc.ClearSentMessages()

	t.Run("not due", func(t *testing.T) {
		res, err := env.Backup.Run(ctx, day1)
		require.NoError(t, err)
		assert.False(t, res.Ran)
		assert.Empty(t, emailsvc.SentMessages)
	})

	due := day1.AddDays(31) // missed the scheduled date

	t.Run("due", func(t *testing.T) {
		res, err := env.Backup.Run(ctx, due)
		require.NoError(t, err)
		assert.True(t, res.Ran)
		assert.Equal(t, env.Conf.ExportDir, res.Dir)
		assert.Len(t, res.Files, 1)
		assert.Equal(t, due.AddDays(30).String(), res.NextDate.String())

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, testutil.Recipient, msg.To[0].Address)
		assert.Contains(t, msg.Subject, testutil.ClassName)
		assert.Contains(t, msg.TextContent, "Attendance Record 4-3-2024.csv")
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, "text/csv", msg.Attachments[0].ContentType)
	})

	t.Run("rescheduled", func(t *testing.T) {
		res, err := env.Backup.Run(ctx, due)
		require.NoError(t, err)
		assert.False(t, res.Ran)
	})
}

func TestBackup_Run_NoMailer(t *testing.T) {
	env := testutil.NewEnv(t)
	testutil.FreezeToday(t, day1)
	b := export.NewBackup(env.Export, env.Settings, env.Class, nil, "", env.Logger)

	res, err := b.Run(context.Background(), day1.AddDays(30))
	require.NoError(t, err)
	assert.True(t, res.Ran)
	assert.Empty(t, res.Files)
}
