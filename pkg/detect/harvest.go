package detect

// RawElement is the per-element snapshot produced by the in-page harvest
// script. Everything selector synthesis and label inference need is read in
// one round trip so the rest of the pipeline runs as pure Go.
type RawElement struct {
	Tag            string            `json:"tag"`
	Type           string            `json:"type"`
	Name           string            `json:"name"`
	ID             string            `json:"id"`
	Placeholder    string            `json:"placeholder"`
	AriaLabel      string            `json:"ariaLabel"`
	Autocomplete   string            `json:"autocomplete"`
	Role           string            `json:"role"`
	Class          string            `json:"class"`
	Required       bool              `json:"required"`
	Hidden         bool              `json:"hidden"`
	CookieAncestor bool              `json:"cookieAncestor"`
	DataAttrs      map[string]string `json:"data"`
	LabelText      string            `json:"labelText"`
	StructuralPath string            `json:"path"`
}

// mainFrameQuery casts a wide net on the top document. Scripted boards
// render controls as attributed divs, so role and data-automation-id
// variants are included alongside native tags.
const mainFrameQuery = "input, select, textarea, " +
	"[data-automation-id*='input'], " +
	"[data-automation-id*='textInput'], " +
	"[data-automation-id*='dropdown'], " +
	"[role='textbox'], " +
	"[role='combobox']"

// childFrameQuery keeps to native controls inside embedded frames. Form
// iframes (Greenhouse, Lever embeds) use plain markup.
const childFrameQuery = "input, select, textarea"

// harvestScript runs once per frame and returns one RawElement per
// candidate. The hidden check is a liveness check, not geometric: only
// display:none, visibility:hidden, or type=hidden (directly or via an
// ancestor) disqualify; off-screen elements stay in.
const harvestScript = `(selectors) => {
	const out = [];
	const seen = new Set();
	const cookieRe = /(cookie|consent|gdpr|onetrust|cookiebot|cc-banner)/;

	for (const el of document.querySelectorAll(selectors)) {
		if (seen.has(el)) continue;
		seen.add(el);

		const style = window.getComputedStyle(el);
		let hidden = style.display === 'none' ||
			style.visibility === 'hidden' ||
			el.type === 'hidden';
		if (!hidden) {
			let p = el.parentElement;
			while (p) {
				if (window.getComputedStyle(p).display === 'none') { hidden = true; break; }
				p = p.parentElement;
			}
		}

		let cookieAncestor = false;
		let p = el;
		while (p) {
			const id = (p.id || '').toLowerCase();
			const cls = (typeof p.className === 'string' ? p.className : '').toLowerCase();
			if (cookieRe.test(id + ' ' + cls)) { cookieAncestor = true; break; }
			p = p.parentElement;
		}

		const data = {};
		for (const a of el.attributes) {
			if (a.name.startsWith('data-') && a.value) data[a.name] = a.value;
		}

		let labelText = '';
		if (el.id) {
			const l = document.querySelector('label[for="' + CSS.escape(el.id) + '"]');
			if (l) labelText = l.innerText.trim();
		}

		let path = '';
		const parts = [];
		let cur = el;
		while (cur && cur.tagName) {
			if (cur.id) {
				path = '#' + CSS.escape(cur.id) + (parts.length ? ' > ' + parts.join(' > ') : '');
				break;
			}
			let seg = cur.tagName.toLowerCase();
			const parent = cur.parentElement;
			if (parent) {
				const sibs = parent.querySelectorAll(':scope > ' + seg);
				if (sibs.length > 1) {
					seg += ':nth-of-type(' + (Array.from(sibs).indexOf(cur) + 1) + ')';
				}
			}
			parts.unshift(seg);
			cur = parent;
			if (cur && (cur.tagName === 'FORM' || cur.tagName === 'MAIN')) {
				parts.unshift(cur.tagName.toLowerCase() + (cur.id ? '#' + cur.id : ''));
				break;
			}
		}
		if (!path) path = parts.join(' > ');

		out.push({
			tag: el.tagName.toLowerCase(),
			type: el.getAttribute('type') || '',
			name: el.getAttribute('name') || '',
			id: el.id || '',
			placeholder: el.getAttribute('placeholder') || '',
			ariaLabel: el.getAttribute('aria-label') || '',
			autocomplete: el.getAttribute('autocomplete') || '',
			role: el.getAttribute('role') || '',
			class: (typeof el.className === 'string' ? el.className : ''),
			required: el.hasAttribute('required'),
			hidden: hidden,
			cookieAncestor: cookieAncestor,
			data: data,
			labelText: labelText,
			path: path
		});
	}
	return out;
}`
