package platform

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"gt-go/internal/gt"
)

const commandTimeout = 10 * time.Second

// TerminalDisplay writes alerts as framed text blocks.
type TerminalDisplay struct {
	mu         sync.Mutex
	w          io.Writer
	permission gt.Permission
}

func NewTerminalDisplay(w io.Writer, permission gt.Permission) *TerminalDisplay {
	return &TerminalDisplay{w: w, permission: permission}
}

func (d *TerminalDisplay) Permission() gt.Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// RequestPermission grants permission unless the user denied it in config.
func (d *TerminalDisplay) RequestPermission(_ context.Context) (gt.Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission == gt.PermissionDefault {
		d.permission = gt.PermissionGranted
	}
	return d.permission, nil
}

func (d *TerminalDisplay) Show(title, body string, opts gt.DisplayOptions) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission != gt.PermissionGranted {
		return nil
	}

	width := max(len([]rune(title)), len([]rune(body))) + 4
	rule := strings.Repeat("=", width)
	if !opts.RequireInteraction {
		rule = strings.Repeat("-", width)
	}
	if _, err := fmt.Fprintf(d.w, "%s\n  %s\n  %s\n%s\n", rule, title, body, rule); err != nil {
		return fmt.Errorf("writing alert: %w", err)
	}
	return nil
}

// CommandDisplay runs an external notifier such as notify-send with the
// title and body as arguments. When the command cannot be found the
// facility is absent and permission is permanently denied.
type CommandDisplay struct {
	mu         sync.Mutex
	path       string
	permission gt.Permission
}

func NewCommandDisplay(command string, permission gt.Permission) *CommandDisplay {
	path, err := exec.LookPath(command)
	if err != nil {
		return &CommandDisplay{permission: gt.PermissionDenied}
	}
	return &CommandDisplay{path: path, permission: permission}
}

// Available reports whether the notifier binary was found.
func (d *CommandDisplay) Available() bool { return d.path != "" }

func (d *CommandDisplay) Permission() gt.Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

func (d *CommandDisplay) RequestPermission(_ context.Context) (gt.Permission, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.permission == gt.PermissionDefault {
		d.permission = gt.PermissionGranted
	}
	return d.permission, nil
}

func (d *CommandDisplay) Show(title, body string, _ gt.DisplayOptions) error {
	if d.Permission() != gt.PermissionGranted {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, d.path, title, body).CombinedOutput()
	if err != nil {
		return fmt.Errorf("running %s: %w: %s", d.path, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// NoneDisplay is used where no notification facility exists.
type NoneDisplay struct{}

func (NoneDisplay) Permission() gt.Permission { return gt.PermissionDenied }

func (NoneDisplay) RequestPermission(context.Context) (gt.Permission, error) {
	return gt.PermissionDenied, nil
}

func (NoneDisplay) Show(string, string, gt.DisplayOptions) error { return nil }

var (
	_ gt.Display = (*TerminalDisplay)(nil)
	_ gt.Display = (*CommandDisplay)(nil)
	_ gt.Display = NoneDisplay{}
)
