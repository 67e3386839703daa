// Package automation dispatches scripted UI sequences into embedded views.
//
// The scripts themselves are opaque payloads as far as the dispatcher is
// concerned: parameterized templates versioned in a manifest, rendered
// with an ordinal selection index and settle/activate delays, then handed
// to the view's remote-execution capability. Keeping them as templates
// (rather than inline concatenation) makes the contract testable without a
// live page.
package automation

import (
	"fmt"
	"strings"
	"text/template"
)

// Empirical delays matching the remote UI's own animation and render
// timing. Changing them breaks pages that have not finished laying out
// their menus; they are defaults, not hard floors.
const (
	DefaultSettleDelayMS   = 200
	DefaultActivateDelayMS = 1000
)

// Built-in script names.
const (
	// ScriptModelSelect opens the page's model selector and activates the
	// option at the given ordinal.
	ScriptModelSelect = "model-select"

	// ScriptChatDelete deletes the current conversation from inside the
	// embedded view and suppresses the view's own Delete handling so the
	// removal does not fire twice.
	ScriptChatDelete = "chat-delete"
)

// Params parameterize one script rendering.
type Params struct {
	// Ordinal is the zero-based position of the option to activate.
	Ordinal int

	// SettleDelayMS is the wait before enumerating the option list.
	// Zero means DefaultSettleDelayMS.
	SettleDelayMS int

	// ActivateDelayMS is the wait before activating the chosen option.
	// Zero means DefaultActivateDelayMS.
	ActivateDelayMS int
}

func (p Params) withDefaults() Params {
	if p.SettleDelayMS == 0 {
		p.SettleDelayMS = DefaultSettleDelayMS
	}
	if p.ActivateDelayMS == 0 {
		p.ActivateDelayMS = DefaultActivateDelayMS
	}
	return p
}

// Script is one versioned automation payload template.
type Script struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Source  string `yaml:"source"`
}

// Render instantiates the script with the given parameters.
func (s *Script) Render(p Params) (string, error) {
	tmpl, err := template.New(s.Name).Parse(s.Source)
	if err != nil {
		return "", fmt.Errorf("script %q: invalid template: %w", s.Name, err)
	}

	var out strings.Builder
	if err := tmpl.Execute(&out, p.withDefaults()); err != nil {
		return "", fmt.Errorf("script %q: render failed: %w", s.Name, err)
	}
	return out.String(), nil
}

// modelSelectSource opens the model selector with a pointer activation
// sequence, waits out the menu animation, then activates the option at the
// requested ordinal. A missing trigger or a menu that never appeared is a
// no-op; there is no retry.
const modelSelectSource = `(() => {
	const trigger = document.querySelector('[data-testid="model-switcher-dropdown-button"], button[aria-haspopup="menu"]');
	if (!trigger) { return; }
	trigger.dispatchEvent(new PointerEvent('pointerdown', { bubbles: true }));
	trigger.dispatchEvent(new PointerEvent('pointerup', { bubbles: true }));
	trigger.click();
	setTimeout(() => {
		const options = document.querySelectorAll('[role="menuitem"]');
		if (!options.length) { return; }
		const target = options[{{.Ordinal}}];
		if (!target) { return; }
		setTimeout(() => { target.click(); }, {{.ActivateDelayMS}});
	}, {{.SettleDelayMS}});
})();`

// chatDeleteSource first installs a capture-phase Delete suppressor inside
// the view (the host-side interception already consumed the key once;
// letting the view see it too would delete twice), then walks the page's
// own conversation-options menu to its delete confirmation.
const chatDeleteSource = `(() => {
	if (!window.__webcanvasDeleteGuard) {
		window.__webcanvasDeleteGuard = true;
		document.addEventListener('keydown', (ev) => {
			if (ev.key === 'Delete') {
				ev.preventDefault();
				ev.stopImmediatePropagation();
			}
		}, true);
	}
	const menu = document.querySelector('[data-testid="conversation-options-button"], button[aria-haspopup="menu"]');
	if (!menu) { return; }
	menu.click();
	setTimeout(() => {
		const options = Array.from(document.querySelectorAll('[role="menuitem"]'));
		const del = options.find((o) => /delete/i.test(o.textContent || ''));
		if (!del) { return; }
		del.click();
		setTimeout(() => {
			const confirm = document.querySelector('[data-testid="delete-conversation-confirm-button"], button.btn-danger');
			if (confirm) { confirm.click(); }
		}, {{.ActivateDelayMS}});
	}, {{.SettleDelayMS}});
})();`
