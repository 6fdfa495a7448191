package bot

import (
	"fmt"
	"strings"

	"mindvault/internal/intake"
)

// FormatSaved formats the confirmation shown after an item is stored.
func FormatSaved(sum *intake.Summary) string {
	var b strings.Builder
	b.WriteString("📌 Saved Successfully\n\n")
	fmt.Fprintf(&b, "Title: %s\n", sum.Title)
	fmt.Fprintf(&b, "Filename: %s\n", sum.Filename)
	fmt.Fprintf(&b, "Tags: %s\n", strings.Join(sum.Tags, " "))
	source := sum.URL
	if source == "" {
		source = "Direct message"
	}
	fmt.Fprintf(&b, "Source: %s", source)
	return b.String()
}

// FormatBackupStatus formats the user's backup settings.
func FormatBackupStatus(st intake.Status) string {
	var b strings.Builder
	b.WriteString("💾 Backup status\n\n")
	if st.Enabled {
		b.WriteString("Daily backups: enabled\n")
	} else {
		b.WriteString("Daily backups: disabled\n")
	}
	if st.LastBackup != nil {
		fmt.Fprintf(&b, "Last backup: %s", st.LastBackup.UTC().Format("2006-01-02 15:04 UTC"))
	} else {
		b.WriteString("Last backup: never")
	}
	return b.String()
}
