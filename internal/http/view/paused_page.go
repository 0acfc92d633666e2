package view

// PausedPage is served with a 503 when a link's status is paused.
const PausedPage = `<!DOCTYPE html>
<html lang="en">
<head>
	<title>Link Paused</title>
	<style>body{font-family:sans-serif;text-align:center;padding:2rem;}</style>
</head>
<body>
	<h1>Link Paused</h1>
	<p>This short link is currently paused by the administrator.</p>
</body>
</html>
`
