package main

import (
	"context"
	"fmt"

	"github.com/abray/moodfm/internal/repositories"
	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	moodStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Width(12)
	timeStyle   = lipgloss.NewStyle().Faint(true)
	noteStyle   = lipgloss.NewStyle().Italic(true)
)

// MoodsRecent prints a user's most recent mood entries, newest first.
// Operator convenience for inspecting a log without opening the web UI.
func (r *Runner) MoodsRecent(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	username := cmd.String("user")
	limit := cmd.Int("limit")

	db, err := r.openDatabase()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	users := repositories.NewUserRepository(db)
	moods := repositories.NewMoodRepository(db)

	user, err := users.GetByUsername(username)
	if err != nil {
		return err
	}

	entries, err := moods.RecentForUser(user.ID, int(limit))
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(r.output, "no mood entries for %s\n", username)
		return nil
	}

	fmt.Fprintln(r.output, headerStyle.Render(fmt.Sprintf("recent moods for %s", username)))
	for _, entry := range entries {
		line := fmt.Sprintf("%s %s %s",
			timeStyle.Render(entry.Timestamp.Format("2006-01-02 15:04")),
			moodStyle.Render(entry.Mood.String()),
			noteStyle.Render(entry.Note),
		)
		fmt.Fprintln(r.output, line)
	}

	return nil
}
