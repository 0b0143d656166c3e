package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"modelview/internal/config"
	"modelview/internal/session"
)

// parseSelection accepts "", "all", "none" or a positive model id. An empty
// value yields nil.
func parseSelection(s string) (*session.Selection, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return nil, nil
	case "all":
		all := session.All()
		return &all, nil
	case "none":
		none := session.None()
		return &none, nil
	default:
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("--select must be a positive model id, all or none, got %q", s)
		}
		one := session.Single(id)
		return &one, nil
	}
}

func runWatch(ctx context.Context, cfg config.Config, opts *Options, sel *session.Selection) error {
	log, closer, err := NewLogger(cfg, opts, opts.Err)
	if err != nil {
		return err
	}
	app, err := Start(ctx, cfg, log)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return err
	}
	app.logFile = closer
	defer app.Close()
	snaps, cancel := app.Session.Subscribe()
	defer cancel()
	return watchStatus(ctx, app.Session, snaps, sel, opts.Out)
}

// selector is the subset of the session watchStatus drives.
type selector interface {
	SelectModel(id int64) error
	SelectAll() error
	ClearSelection() error
}

func apply(s selector, sel session.Selection) error {
	switch sel.Kind {
	case session.SelectAll:
		return s.SelectAll()
	case session.SelectSingle:
		return s.SelectModel(sel.ID)
	default:
		return s.ClearSelection()
	}
}

// watchStatus prints one line per status change and applies sel once the
// first catalog arrives. It returns when ctx is done or snaps is closed.
func watchStatus(ctx context.Context, s selector, snaps <-chan session.Snapshot, sel *session.Selection, out io.Writer) error {
	last := ""
	applied := sel == nil
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			if snap.Status != last {
				last = snap.Status
				fmt.Fprintf(out, "%s\t%d models\t%d placed\t%s\n", snap.Selection, len(snap.Models), len(snap.Placed), snap.Status)
			}
			if !applied && snap.CatalogReceived {
				applied = true
				if err := apply(s, *sel); err != nil {
					return err
				}
			}
		}
	}
}
