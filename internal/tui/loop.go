package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-predict/pkg/catalog"
	"github.com/goliatone/go-predict/pkg/client"
	"github.com/goliatone/go-predict/pkg/fields"
	"github.com/goliatone/go-predict/pkg/payload"
	"github.com/goliatone/go-predict/pkg/render"
	"github.com/goliatone/go-predict/pkg/session"
)

const (
	actionSelectModel = "Select model"
	actionEditFields  = "Edit fields"
	actionApplyPreset = "Apply preset"
	actionSubmit      = "Submit prediction"
	actionRefresh     = "Refresh catalog"
	actionHealth      = "Health check"
	actionQuit        = "Quit"
)

// Loop runs the interactive prediction workflow against a session.
type Loop struct {
	driver   PromptDriver
	session  *session.Session
	renderer render.Renderer
	theme    *render.ThemeConfig
}

// NewLoop wires the workflow loop. A nil driver falls back to the survey
// terminal driver.
func NewLoop(driver PromptDriver, sess *session.Session, renderer render.Renderer, theme *render.ThemeConfig) *Loop {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Loop{driver: driver, session: sess, renderer: renderer, theme: theme}
}

// Run starts the session and loops over the main menu until the user quits or
// aborts. Aborting a nested prompt returns to the menu; aborting the menu
// exits cleanly.
func (l *Loop) Run(ctx context.Context) error {
	if err := l.session.Start(ctx); err != nil {
		return err
	}
	if kind := l.session.Kind(); kind != "" {
		if err := l.driver.Info(ctx, "Selected model: "+kind.DisplayName()); err != nil {
			return err
		}
	}

	menu := []string{
		actionSelectModel, actionEditFields, actionApplyPreset,
		actionSubmit, actionRefresh, actionHealth, actionQuit,
	}
	for {
		idx, err := l.driver.Select(ctx, SelectConfig{Message: "What next?", Options: menu})
		if errors.Is(err, ErrAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(menu) {
			return fmt.Errorf("tui: select returned index %d", idx)
		}

		action := menu[idx]
		if action == actionQuit {
			return nil
		}
		if err := l.dispatch(ctx, action); err != nil {
			if errors.Is(err, ErrAborted) {
				continue
			}
			return err
		}
	}
}

func (l *Loop) dispatch(ctx context.Context, action string) error {
	switch action {
	case actionSelectModel:
		return l.selectModel(ctx)
	case actionEditFields:
		return l.editFields(ctx)
	case actionApplyPreset:
		return l.applyPreset(ctx)
	case actionSubmit:
		return l.submit(ctx)
	case actionRefresh:
		return l.refresh(ctx)
	case actionHealth:
		return l.health(ctx)
	}
	return nil
}

func (l *Loop) selectModel(ctx context.Context) error {
	kinds := l.session.Kinds()
	if len(kinds) == 0 {
		return l.driver.Info(ctx, "The service advertises no models.")
	}
	options := make([]string, len(kinds))
	for i, k := range kinds {
		options[i] = k.DisplayName()
	}
	idx, err := l.driver.Select(ctx, SelectConfig{Message: "Model", Options: options})
	if err != nil {
		return err
	}
	if err := l.session.SelectModel(kinds[idx]); err != nil {
		return err
	}
	if model, ok := l.session.Catalog().Model(kinds[idx]); ok && model.Notes != "" {
		return l.driver.Info(ctx, model.Notes)
	}
	return nil
}

func (l *Loop) editFields(ctx context.Context) error {
	descriptors, err := l.session.Descriptors()
	if err != nil {
		return l.reportSessionErr(ctx, err)
	}
	for _, d := range descriptors {
		current, err := l.session.Value(d.Name)
		if err != nil {
			return err
		}
		raw, err := l.promptField(ctx, d, current)
		if err != nil {
			return err
		}
		if err := l.session.SetField(d.Name, raw); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loop) promptField(ctx context.Context, d fields.Descriptor, current string) (string, error) {
	switch d.Kind {
	case fields.KindCategorical:
		idx, err := l.driver.Select(ctx, SelectConfig{
			Message:      d.Name,
			Options:      d.Options,
			DefaultIndex: indexOf(d.Options, current),
		})
		if err != nil {
			return "", err
		}
		return d.Options[idx], nil
	case fields.KindNumeric:
		return l.driver.Input(ctx, InputConfig{
			Message:   d.Name,
			Default:   current,
			Help:      "Enter a number; leave empty to mark the field unset.",
			Validator: numericValidator,
		})
	default:
		return l.driver.Input(ctx, InputConfig{Message: d.Name, Default: current})
	}
}

func numericValidator(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err != nil {
		return fmt.Errorf("%q is not a number", raw)
	}
	return nil
}

func (l *Loop) applyPreset(ctx context.Context) error {
	available, err := l.session.Presets()
	if err != nil {
		return l.reportSessionErr(ctx, err)
	}
	if len(available) == 0 {
		return l.driver.Info(ctx, "No presets for this model.")
	}
	options := make([]string, len(available))
	for i, p := range available {
		options[i] = p.Name
	}
	idx, err := l.driver.Select(ctx, SelectConfig{Message: "Preset", Options: options})
	if err != nil {
		return err
	}
	return l.session.ApplyPreset(available[idx].Name)
}

func (l *Loop) submit(ctx context.Context) error {
	summary, report, err := l.session.Submit(ctx, nil)
	var validation *payload.ValidationError
	switch {
	case errors.As(err, &validation):
		return l.driver.Info(ctx, "Cannot submit: "+validation.Error())
	case err != nil:
		return l.reportSessionErr(ctx, err)
	}

	if report.HasIgnored() {
		msg := "Ignored fields: " + strings.Join(report.Ignored, ", ")
		if err := l.driver.Info(ctx, msg); err != nil {
			return err
		}
	}

	out, err := l.renderer.Render(ctx, summary, render.Options{Theme: l.theme})
	if err != nil {
		return err
	}
	return l.driver.Info(ctx, string(out))
}

func (l *Loop) refresh(ctx context.Context) error {
	if err := l.session.Refresh(ctx); err != nil {
		return l.reportSessionErr(ctx, err)
	}
	return l.driver.Info(ctx, "Catalog refreshed.")
}

func (l *Loop) health(ctx context.Context) error {
	h, err := l.session.Health(ctx)
	if err != nil {
		return l.reportSessionErr(ctx, err)
	}
	return l.driver.Info(ctx, "Service status: "+h.Status)
}

// reportSessionErr keeps recoverable errors inside the loop. Requests that
// fail or a missing model selection print a notice and return to the menu;
// anything else propagates.
func (l *Loop) reportSessionErr(ctx context.Context, err error) error {
	if errors.Is(err, session.ErrNoModel) {
		return l.driver.Info(ctx, "Select a model first.")
	}
	var requestErr *client.RequestError
	if errors.As(err, &requestErr) || errors.Is(err, catalog.ErrUnavailable) {
		return l.driver.Info(ctx, "Request failed: "+err.Error())
	}
	return err
}
