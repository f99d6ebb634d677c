package views

import (
	"context"

	"go.uber.org/zap"

	"github.com/park285/board-console/internal/backend"
	"github.com/park285/board-console/pkg/consoledto"
)

const (
	idConfigForm   = "config-form"
	idConfigSubmit = "config-submit"
	idConfigStatus = "config-status"
	idSSID         = "ssid"
	idPassword     = "password"
	idToken        = "token"
	idGameMode     = "gameMode"
	idStartupType  = "startupType"
)

// ConfigView loads and saves the controller's network configuration.
type ConfigView struct {
	env *Env
	act activation
}

func NewConfigView(env *Env) *ConfigView {
	env.fill()
	return &ConfigView{env: env, act: activation{env: env}}
}

func (v *ConfigView) Activate() {
	v.act.begin()
	doc := v.env.Doc
	call(&v.act, "load_config", v.env.Backend.LoadConfig, func(cfg backend.ControllerConfig, err error) {
		if err != nil {
			v.env.Logger.Warn("config_load_error", zap.String("session", v.env.SessionID), zap.Error(err))
			return
		}
		// password is never echoed back into the form
		for id, val := range map[string]string{
			idSSID:        cfg.SSID,
			idToken:       cfg.Token,
			idGameMode:    cfg.GameMode,
			idStartupType: cfg.StartupType,
		} {
			if val != "" {
				doc.SetValue(id, val)
			}
		}
	})
}

func (v *ConfigView) Deactivate() { v.act.end() }

func (v *ConfigView) HandleEvent(ev consoledto.ClientEvent) {
	switch {
	case ev.Type == consoledto.EventChange:
		v.env.Doc.Sync(ev.Target, ev.Value)
	case ev.Type == consoledto.EventSubmit && ev.Target == idConfigForm:
		v.Submit(ev.Fields)
	}
}

// Submit posts all five fields. Values in fields win over what the document holds.
func (v *ConfigView) Submit(fields map[string]string) {
	doc := v.env.Doc
	if el := doc.Get(idConfigSubmit); el != nil && el.Disabled() {
		return
	}
	for id, val := range fields {
		doc.Sync(id, val)
	}
	cfg := backend.ControllerConfig{
		SSID:        doc.Value(idSSID),
		Password:    doc.Value(idPassword),
		Token:       doc.Value(idToken),
		GameMode:    doc.Value(idGameMode),
		StartupType: doc.Value(idStartupType),
	}
	doc.SetDisabled(idConfigSubmit, true)
	call(&v.act, "save_config", func(ctx context.Context) (backend.ConfigResult, error) {
		res, err := v.env.Backend.SaveConfig(ctx, cfg)
		v.env.record(ctx, "config_save", "ssid="+cfg.SSID+" mode="+cfg.GameMode+" startup="+cfg.StartupType, err)
		return res, err
	}, func(res backend.ConfigResult, err error) {
		doc.SetDisabled(idConfigSubmit, false)
		if err != nil {
			v.env.Logger.Warn("config_save_error", zap.String("session", v.env.SessionID), zap.Error(err))
			doc.SetText(idConfigStatus, v.env.text("config.save_error", nil))
			doc.SetStyle(idConfigStatus, "color", colorError)
			return
		}
		msg := res.Message
		if msg == "" {
			msg = v.env.text("config.saved", nil)
		}
		doc.SetText(idConfigStatus, msg)
		if res.OK() {
			doc.SetStyle(idConfigStatus, "color", colorOK)
		} else {
			doc.SetStyle(idConfigStatus, "color", colorError)
		}
	})
}
