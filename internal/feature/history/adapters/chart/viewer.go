package chart

import (
	"context"
	"os/exec"
	"strings"

	"stock_etl/internal/feature/history/usecase"
)

// CommandViewer opens a saved chart with an external program such as
// "xdg-open" or "open". An empty command disables display.
type CommandViewer struct {
	Command string
}

var _ usecase.ChartViewer = (*CommandViewer)(nil)

// Show runs the viewer command with path as its last argument and waits for it.
func (v CommandViewer) Show(ctx context.Context, path string) error {
	fields := strings.Fields(v.Command)
	if len(fields) == 0 {
		return nil
	}
	args := append(fields[1:], path)
	return exec.CommandContext(ctx, fields[0], args...).Run()
}
