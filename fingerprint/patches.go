package fingerprint

import (
	"encoding/json"
	"fmt"
)

// overrides is the data form of the evasion patches: the patch script itself
// is static, and everything profile-specific travels as JSON. Keeping the
// overrides declarative means the Go side never concatenates values into JS.
type overrides struct {
	Platform            string   `json:"platform"`
	Vendor              string   `json:"vendor"`
	Languages           []string `json:"languages"`
	WebGLVendor         string   `json:"webglVendor"`
	WebGLRenderer       string   `json:"webglRenderer"`
	TimezoneOffsetMin   int      `json:"timezoneOffsetMin"`
	HardwareConcurrency int      `json:"hardwareConcurrency"`
	DeviceMemory        int      `json:"deviceMemory"`
}

// PatchScript renders the evasion patch script for the profile. The script
// must be installed via Page.EvalOnNewDocument before the first navigation so
// it runs ahead of any page script, and it persists for the whole session.
func (p *Profile) PatchScript() (string, error) {
	data, err := json.Marshal(overrides{
		Platform:            p.Platform,
		Vendor:              p.Vendor,
		Languages:           p.Languages,
		WebGLVendor:         p.WebGLVendor,
		WebGLRenderer:       p.WebGLRenderer,
		TimezoneOffsetMin:   p.TimezoneOffsetMin,
		HardwareConcurrency: p.HardwareConcurrency,
		DeviceMemory:        p.DeviceMemory,
	})
	if err != nil {
		return "", fmt.Errorf("fingerprint: marshal overrides: %w", err)
	}
	return fmt.Sprintf(patchTemplate, data), nil
}

// patchTemplate contains the runtime overrides applied before any page
// script runs. Each block is independent and guarded so a single failure
// cannot break the rest.
const patchTemplate = `(() => {
	'use strict';
	if (window.__fpApplied) return;
	window.__fpApplied = true;

	const fp = %s;

	const def = (obj, name, getter) => {
		try {
			Object.defineProperty(obj, name, { get: getter, configurable: true });
		} catch (e) {}
	};

	// Automation flag.
	def(navigator, 'webdriver', () => undefined);

	// Navigator surface.
	def(navigator, 'platform', () => fp.platform);
	def(navigator, 'vendor', () => fp.vendor);
	def(navigator, 'languages', () => fp.languages);
	def(navigator, 'language', () => fp.languages[0]);
	def(navigator, 'hardwareConcurrency', () => fp.hardwareConcurrency);
	def(navigator, 'deviceMemory', () => fp.deviceMemory);

	// Plugin list: headless Chrome ships none, real Chrome ships these.
	def(navigator, 'plugins', () => {
		const mk = (name, filename, description) => ({
			name, filename, description,
			length: 1,
			item: () => null,
			namedItem: () => null,
		});
		const plugins = [
			mk('Chrome PDF Plugin', 'internal-pdf-viewer', 'Portable Document Format'),
			mk('Chrome PDF Viewer', 'mhjfbmdgcfjbbpaeojofohoefgiehjai', ''),
			mk('Native Client', 'internal-nacl-plugin', ''),
		];
		plugins.item = (i) => plugins[i] || null;
		plugins.namedItem = (n) => plugins.find((p) => p.name === n) || null;
		plugins.refresh = () => {};
		return plugins;
	});

	// GPU renderer strings.
	try {
		const VENDOR = 37445, RENDERER = 37446;
		['WebGLRenderingContext', 'WebGL2RenderingContext'].forEach((name) => {
			const ctx = window[name];
			if (!ctx || !ctx.prototype) return;
			const orig = ctx.prototype.getParameter;
			if (typeof orig !== 'function') return;
			ctx.prototype.getParameter = function (param) {
				if (param === VENDOR) return fp.webglVendor;
				if (param === RENDERER) return fp.webglRenderer;
				return orig.call(this, param);
			};
		});
	} catch (e) {}

	// Timezone offset.
	try {
		Date.prototype.getTimezoneOffset = function () { return fp.timezoneOffsetMin; };
	} catch (e) {}

	// Notifications permission query: headless reports 'denied' without a
	// prompt, which detection scripts compare against Notification.permission.
	try {
		if (navigator.permissions && navigator.permissions.query) {
			const origQuery = navigator.permissions.query.bind(navigator.permissions);
			navigator.permissions.query = (params) =>
				params && params.name === 'notifications'
					? Promise.resolve({ state: Notification.permission, onchange: null })
					: origQuery(params);
		}
		if (typeof Notification !== 'undefined') {
			Object.defineProperty(Notification, 'permission', {
				get: () => 'default',
				configurable: true,
			});
		}
	} catch (e) {}

	// Vendor runtime object expected on real Chrome.
	try {
		if (!window.chrome) window.chrome = {};
		if (!window.chrome.runtime) {
			window.chrome.runtime = {
				connect: () => ({ onMessage: { addListener: () => {} }, postMessage: () => {} }),
				sendMessage: () => {},
				onMessage: { addListener: () => {} },
				id: undefined,
			};
		}
	} catch (e) {}
})();`
