package view

import (
	"bytes"
	"html/template"
)

// InterstitialPageData provides the dynamic fields for the countdown page.
type InterstitialPageData struct {
	TargetURL string
	Seconds   int
}

var interstitialPageTmpl = template.Must(template.New("interstitial_page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Redirecting...</title>
	<style>
		body { font-family: sans-serif; display: flex; flex-direction: column; align-items: center; justify-content: center; height: 100vh; background: #f4f4f5; text-align: center; }
		.card { background: white; padding: 2rem; border-radius: 0.5rem; box-shadow: 0 1px 3px 0 rgb(0 0 0 / 0.1); }
		.btn { display: inline-block; background: #000; color: white; padding: 0.75rem 1.5rem; text-decoration: none; border-radius: 0.25rem; margin-top: 1rem; }
	</style>
</head>
<body>
	<div class="card">
		<h1>You are being redirected</h1>
		<p>You are about to leave this site and visit:</p>
		<p style="font-weight: bold; color: #059669;">{{.TargetURL}}</p>
		<p id="timer">Redirecting in {{.Seconds}} seconds...</p>
		<a href="{{.TargetURL}}" class="btn">Go Now</a>
	</div>
	<script>
		let count = {{.Seconds}};
		const timer = document.getElementById('timer');
		const target = {{.TargetURL}};
		const interval = setInterval(() => {
			count--;
			timer.textContent = 'Redirecting in ' + count + ' seconds...';
			if (count <= 0) {
				clearInterval(interval);
				window.location.href = target;
			}
		}, 1000);
	</script>
</body>
</html>
`))

// RenderInterstitialPage expands the countdown page for the given target.
func RenderInterstitialPage(data InterstitialPageData) (string, error) {
	if data.Seconds <= 0 {
		data.Seconds = 5
	}
	var buf bytes.Buffer
	if err := interstitialPageTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
