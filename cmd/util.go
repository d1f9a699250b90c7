package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"

	"github.com/The-Noona-Project/Noona-Vault/internal/core"
	"github.com/The-Noona-Project/Noona-Vault/pkg/client"
)

var (
	bold  = color.New(color.Bold).SprintFunc()
	faint = color.New(color.Faint).SprintFunc()

	greenCheck = color.GreenString("✔")
	redCross   = color.RedString("✘")
)

// BeQuietError signals that the error was already reported to the user.
type BeQuietError struct{}

func (BeQuietError) Error() string {
	return "command failed"
}

func logSuccess(format string, args ...any) {
	log.Info().Msgf("%s %s", greenCheck, fmt.Sprintf(format, args...))
}

// logError reports a failed remote call including its correlation ID and
// returns a BeQuietError.
func logError(err error, correlation, msg string) error {
	if correlation != "" {
		log.Error().Msgf("%s %s (correlation ID: %s)", redCross, msg, correlation)
	} else {
		log.Error().Msgf("%s %s", redCross, msg)
	}
	log.Error().Msgf("error: %v", err)
	return BeQuietError{}
}

func applyTableFormat(t table.Writer) {
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
}

func levelString(level core.AuthLevel) string {
	if level == core.AuthProtected {
		return color.YellowString(string(level))
	}
	return color.GreenString(string(level))
}

func parseIdentity(arg string) (core.ServiceIdentity, error) {
	identity := core.ServiceIdentity(arg)
	if err := identity.Validate(); err != nil {
		return "", err
	}
	return identity, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, client.ErrNotFound) || errors.Is(err, core.ErrNotFound)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// writeFile writes data and refuses to overwrite existing files unless force is set.
func writeFile(path, data string, perm os.FileMode, force bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(path, flags, perm)
	if err != nil {
		return fmt.Errorf("opening '%s' for writing: %w", path, err)
	}
	if _, err := file.WriteString(strings.TrimSpace(data) + "\n"); err != nil {
		_ = file.Close()
		return fmt.Errorf("writing '%s': %w", path, err)
	}
	return file.Close()
}
