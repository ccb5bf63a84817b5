package httpapi

// indexHTML is the chat-style question form. Progress and answer fragments
// arrive over the SSE stream for the submitted run.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>AiQuery</title>
<style>
  body { font-family: sans-serif; max-width: 720px; margin: 2rem auto; padding: 0 1rem; }
  textarea { width: 100%; height: 4.5rem; font-size: 1rem; }
  button { padding: 0.5rem 1.5rem; font-size: 1rem; }
  #progress { color: #666; min-height: 1.2rem; margin: 0.5rem 0; }
  #answer { white-space: pre-wrap; border: 1px solid #ddd; border-radius: 4px; padding: 1rem; min-height: 6rem; }
</style>
</head>
<body>
<h1>&#128269; AiQuery</h1>
<p>An autonomous search agent that reasons, refines queries, and critiques results.</p>
<textarea id="question" placeholder="Ex: Who won the Best Picture Oscar in 2024?"></textarea>
<p><button id="submit">Submit</button></p>
<div id="progress"></div>
<div id="answer"></div>
<script>
const btn = document.getElementById('submit');
btn.addEventListener('click', async () => {
  const question = document.getElementById('question').value.trim();
  if (!question) return;
  btn.disabled = true;
  const answerEl = document.getElementById('answer');
  const progressEl = document.getElementById('progress');
  answerEl.textContent = '';
  progressEl.textContent = 'Initializing AiQuery...';

  const resp = await fetch('/ask', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({question})
  });
  if (!resp.ok) { progressEl.textContent = 'Request failed.'; btn.disabled = false; return; }
  const {run_id} = await resp.json();

  const es = new EventSource('/stream/sse?run_id=' + run_id);
  es.addEventListener('progress', e => {
    const ev = JSON.parse(e.data);
    progressEl.textContent = Math.round(ev.fraction * 100) + '% - ' + ev.message;
  });
  es.addEventListener('answer', e => {
    answerEl.textContent += JSON.parse(e.data).message;
  });
  es.addEventListener('final', e => {
    answerEl.textContent = JSON.parse(e.data).message;
    progressEl.textContent = 'Done.';
    es.close();
    btn.disabled = false;
  });
  es.addEventListener('error', e => {
    if (e.data) { progressEl.textContent = 'Error: ' + JSON.parse(e.data).message; }
    es.close();
    btn.disabled = false;
  });
});
</script>
</body>
</html>
`
