package view

import (
	"bytes"
	"html/template"
)

// PublicPageData provides the dynamic fields for the public create page.
type PublicPageData struct {
	TurnstileSiteKey string
}

var publicPageTmpl = template.Must(template.New("public_page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Shorten URL</title>
	<script src="https://challenges.cloudflare.com/turnstile/v0/api.js" async defer></script>
	<style>
		body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; max-width: 600px; margin: 2rem auto; padding: 0 1rem; background: #f4f4f5; color: #18181b; }
		.card { background: white; padding: 2rem; border-radius: 0.5rem; box-shadow: 0 1px 3px 0 rgb(0 0 0 / 0.1); }
		h1 { margin-top: 0; text-align: center; }
		.form-group { margin-bottom: 1rem; }
		label { display: block; margin-bottom: 0.5rem; font-weight: 500; }
		input[type="url"], input[type="text"], input[type="datetime-local"] { width: 100%; padding: 0.5rem; border: 1px solid #d4d4d8; border-radius: 0.25rem; box-sizing: border-box; }
		button { width: 100%; background: #000; color: white; padding: 0.75rem; border: none; border-radius: 0.25rem; font-weight: 600; cursor: pointer; }
		button:hover { background: #27272a; }
		#result { margin-top: 1rem; padding: 1rem; background: #ecfdf5; border: 1px solid #059669; color: #065f46; border-radius: 0.25rem; display: none; word-break: break-all; }
		#error { margin-top: 1rem; padding: 1rem; background: #fef2f2; border: 1px solid #dc2626; color: #991b1b; border-radius: 0.25rem; display: none; }
		.cf-turnstile { margin-top: 1rem; display: flex; justify-content: center; }
	</style>
</head>
<body>
	<div class="card">
		<h1>Shorten URL</h1>
		<form id="createForm">
			<div class="form-group">
				<label for="url">Target URL</label>
				<input type="url" id="url" name="url" required maxlength="1000" placeholder="https://example.com/very/long/url">
			</div>
			<div class="form-group">
				<label for="slug">Custom Slug (Optional)</label>
				<input type="text" id="slug" name="slug" minlength="3" placeholder="custom-name" pattern="[a-zA-Z0-9-_]+" title="Alphanumeric, dashes, and underscores only">
			</div>
			<div class="form-group">
				<label for="expires">Expires At (Optional)</label>
				<input type="datetime-local" id="expires" name="expires">
			</div>

			<div class="cf-turnstile" data-sitekey="{{.TurnstileSiteKey}}"></div>

			<button type="submit">Create Short Link</button>
		</form>
		<div id="result"></div>
		<div id="error"></div>
	</div>

	<script>
		document.getElementById('createForm').addEventListener('submit', async (e) => {
			e.preventDefault();
			const resultDiv = document.getElementById('result');
			const errorDiv = document.getElementById('error');
			resultDiv.style.display = 'none';
			errorDiv.style.display = 'none';

			const formData = new FormData(e.target);
			const data = Object.fromEntries(formData.entries());

			try {
				const res = await fetch('/api/create', {
					method: 'POST',
					headers: { 'Content-Type': 'application/json' },
					body: JSON.stringify(data)
				});
				const json = await res.json();
				if (res.ok && json.success) {
					const shortUrl = window.location.origin + '/' + json.slug;
					resultDiv.innerHTML = 'Created: <a href="' + shortUrl + '">' + shortUrl + '</a>';
					resultDiv.style.display = 'block';
					e.target.reset();
				} else {
					errorDiv.textContent = json.error || 'Something went wrong';
					errorDiv.style.display = 'block';
				}
			} catch (err) {
				errorDiv.textContent = 'Network error';
				errorDiv.style.display = 'block';
			}
			if (window.turnstile) { window.turnstile.reset(); }
		});
	</script>
</body>
</html>
`))

// RenderPublicPage expands the public create page with the site key.
func RenderPublicPage(data PublicPageData) (string, error) {
	var buf bytes.Buffer
	if err := publicPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
