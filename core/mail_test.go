package core

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	msg := &EmailMessage{
		Subject:      "Backup",
		TemplateName: "backup",
		TemplateData: map[string]interface{}{
			"Class": "Grade 6",
			"Date":  "19-10-2026",
			"Dir":   "/tmp/records",
			"Files": []string{"Attendance Record 19-10-2026.csv"},
		},
	}
	require.NoError(t, msg.Render("Paper"))

	assert.True(t, msg.HasContent())
	assert.Contains(t, msg.TextContent, "Grade 6 attendance backup of 19-10-2026")
	assert.Contains(t, msg.TextContent, "  - Attendance Record 19-10-2026.csv")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(msg.TextContent), "Paper"))
	assert.Contains(t, msg.HTMLContent, "<strong>Grade 6</strong>")
}

func TestEmailMessage_RenderBodyStr(t *testing.T) {
	msg := &EmailMessage{Subject: "Hi", BodyStr: "plain"}
	require.NoError(t, msg.Render("Paper"))
	assert.Equal(t, "plain", msg.TextContent)
	assert.Empty(t, msg.HTMLContent)
}

func TestEmailMessage_Attach(t *testing.T) {
	msg := new(EmailMessage)
	require.NoError(t, msg.Attach(bytes.NewBufferString("Name,State\nAlice,P\n"), "a.csv", "text/csv"))
	require.True(t, msg.HasAttachments())

	at := msg.Attachments[0]
	assert.Equal(t, "a.csv", at.Filename)
	assert.Equal(t, "text/csv", at.ContentType)
	decoded, err := base64.StdEncoding.DecodeString(at.Content.String())
	require.NoError(t, err)
	assert.Equal(t, "Name,State\nAlice,P\n", string(decoded))
}
