package utils

import (
	"strings"
	"testing"
	"time"

	"forumguard/models"
)

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Minute, "30 minutes"},
		{90 * time.Minute, "1 hours"},
		{36 * time.Hour, "36 hours"},
		{72 * time.Hour, "3 days"},
	}
	for _, tc := range cases {
		if got := formatElapsed(tc.d); got != tc.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestEscalationEmbedFields(t *testing.T) {
	embed := EscalationEmbed("thread-1", "user-op", 48*time.Hour)
	if len(embed.Fields) != 2 {
		t.Fatalf("expected thread and author fields, got %v", embed.Fields)
	}
	if !strings.Contains(embed.Fields[0].Value, "thread-1") {
		t.Errorf("thread field missing thread mention: %q", embed.Fields[0].Value)
	}
	if !strings.Contains(embed.Fields[1].Value, "user-op") {
		t.Errorf("author field missing OP mention: %q", embed.Fields[1].Value)
	}
	if !strings.Contains(embed.Description, "2 days") {
		t.Errorf("description should carry the elapsed time: %q", embed.Description)
	}
}

func TestSettingsEmbedRendersConfig(t *testing.T) {
	config := models.DefaultGuildConfig("guild-1")
	config.MonitoredChannels = []string{"forum-1"}
	config.SupportRoles = []string{"role-support"}
	config.SolutionTags["forum-1"] = "tag-solved"
	config.Escalation = models.EscalationSettings{
		Enabled:         true,
		StalenessWindow: 24 * time.Hour,
		NotifyChannelID: "channel-alerts",
	}

	embed := SettingsEmbed("Test Guild", config)
	if !strings.Contains(embed.Title, "Test Guild") {
		t.Errorf("title should carry the guild name: %q", embed.Title)
	}
	joined := ""
	for _, f := range embed.Fields {
		joined += f.Name + " " + f.Value + "\n"
	}
	for _, want := range []string{"forum-1", "role-support", "tag-solved", "channel-alerts", "24 hours"} {
		if !strings.Contains(joined, want) {
			t.Errorf("settings embed missing %q:\n%s", want, joined)
		}
	}
}

func TestSettingsEmbedEmptyConfig(t *testing.T) {
	embed := SettingsEmbed("Test Guild", models.DefaultGuildConfig("guild-1"))
	for _, f := range embed.Fields {
		if f.Value == "" {
			t.Errorf("field %q rendered empty", f.Name)
		}
	}
}
