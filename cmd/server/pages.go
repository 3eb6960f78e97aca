package main

import (
	"html/template"
	"log"
	"net/http"

	"photobooth-app/internal/models"
)

// pageData is the context every page template receives.
type pageData struct {
	UserID   *string
	SignedIn bool
	Error    string
	Filters  []models.FilterType
	Frames   []models.FrameType
	Fonts    []models.FontStyle
}

func (app *App) pageData(r *http.Request) pageData {
	userID := app.auth.CurrentIdentity(r)
	return pageData{
		UserID:   userID,
		SignedIn: userID != nil,
		Error:    r.URL.Query().Get("error"),
		Filters:  models.Filters,
		Frames:   models.Frames,
		Fonts:    models.FontStyles,
	}
}

func (app *App) renderPage(w http.ResponseWriter, tmpl string, data pageData) {
	t, err := template.New("page").Parse(tmpl)
	if err != nil {
		log.Printf("Template parse error: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.Execute(w, data); err != nil {
		log.Printf("Template execute error: %v", err)
	}
}

func (app *App) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	app.renderPage(w, homePageTemplate, app.pageData(r))
}

func (app *App) handleBoothPage(w http.ResponseWriter, r *http.Request) {
	app.renderPage(w, boothPageTemplate, app.pageData(r))
}

func (app *App) handlePhotobook(w http.ResponseWriter, r *http.Request) {
	app.renderPage(w, photobookPageTemplate, app.pageData(r))
}

func (app *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	app.renderPage(w, loginPageTemplate, app.pageData(r))
}

const homePageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Retrivia Photobooth</title>
    <style>
        body { font-family: Georgia, serif; background: #f9f5e7; color: #5e503f; text-align: center; padding: 60px 20px; }
        h1 { font-size: 2.5em; margin-bottom: 8px; }
        .tagline { color: #8b4513; font-style: italic; margin-bottom: 40px; }
        .actions a { display: inline-block; margin: 10px; padding: 14px 28px; background: #8b4513; color: #f9f5e7; text-decoration: none; border-radius: 6px; }
        .actions a:hover { background: #5e503f; }
        .auth { margin-top: 40px; font-size: 0.9em; }
    </style>
</head>
<body>
    <h1>Retrivia</h1>
    <p class="tagline">Capture the moment, keep the memory</p>
    <div class="actions">
        <a href="/booth">Start a Photobooth</a>
        <a href="/upload">Import Photos</a>
        <a href="/photobook">My Photobook</a>
    </div>
    <div class="auth">
        {{if .SignedIn}}
            Signed in as {{.UserID}} &middot; <a href="/logout">Sign out</a>
        {{else}}
            <a href="/login">Sign in</a> to keep your strips
        {{end}}
    </div>
</body>
</html>`

const boothPageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Photobooth</title>
    <style>
        body { font-family: Georgia, serif; background: #f9f5e7; color: #5e503f; padding: 30px; }
        #countdown { font-size: 5em; text-align: center; min-height: 1.2em; }
        #flash { position: fixed; inset: 0; background: white; opacity: 0; pointer-events: none; transition: opacity 0.1s; }
        .controls { text-align: center; margin-top: 20px; }
        select, input[type=text] { padding: 6px; margin: 4px; }
        button { padding: 10px 20px; background: #8b4513; color: #f9f5e7; border: none; border-radius: 6px; cursor: pointer; }
        #strip { display: block; margin: 20px auto; max-height: 70vh; border: 1px solid #d2bd9e; }
    </style>
</head>
<body>
    <div id="flash"></div>
    <div style="text-align:center"><button id="start">Start Capture</button></div>
    <div id="countdown"></div>
    <img id="strip" alt="Your photostrip will appear here">
    <div class="controls">
        <select id="filter">{{range .Filters}}<option value="{{.}}">{{.}}</option>{{end}}</select>
        <select id="frame">{{range .Frames}}<option value="{{.}}">{{.}}</option>{{end}}</select>
        <select id="font">{{range .Fonts}}<option value="{{.}}">{{.}}</option>{{end}}</select>
        <input type="text" id="caption" maxlength="50" placeholder="Caption">
        <button id="save">Save to Photobook</button>
        <a id="download" href="#">Download</a>
    </div>
    <script>
        let boothId = sessionStorage.getItem('boothId') || '';
        document.getElementById('start').addEventListener('click', async () => {
            const resp = await fetch('/api/capture/start', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify({boothId}),
            });
            const result = await resp.json();
            boothId = result.boothId;
            sessionStorage.setItem('boothId', boothId);
            connect();
        });
        const params = () => new URLSearchParams({
            boothId,
            filter: document.getElementById('filter').value,
            frame: document.getElementById('frame').value,
            font: document.getElementById('font').value,
            caption: document.getElementById('caption').value,
        });
        function refresh() {
            document.getElementById('strip').src = '/api/strip/render?' + params() + '&t=' + Date.now();
            document.getElementById('download').href = '/api/strip/render?' + params() + '&download=1';
        }
        ['filter', 'frame', 'font', 'caption'].forEach(id =>
            document.getElementById(id).addEventListener('change', refresh));
        document.getElementById('save').addEventListener('click', async () => {
            const body = Object.fromEntries(params());
            const resp = await fetch('/api/strip/save', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify(body),
            });
            const result = await resp.json();
            if (resp.ok) alert('Saved! Session ' + result.sessionId);
            else alert(result.error || 'Save failed');
        });
        function connect() {
            const ws = new WebSocket((location.protocol === 'https:' ? 'wss://' : 'ws://') + location.host + '/ws?boothId=' + boothId);
            ws.onmessage = (ev) => {
                const msg = JSON.parse(ev.data);
                if (msg.type === 'countdown.tick') document.getElementById('countdown').textContent = msg.remaining;
                if (msg.type === 'flash') {
                    const el = document.getElementById('flash');
                    el.style.opacity = 1;
                    setTimeout(() => el.style.opacity = 0, 120);
                }
                if (msg.type === 'sequence.complete') { document.getElementById('countdown').textContent = ''; refresh(); }
                if (msg.type === 'capture.error') document.getElementById('countdown').textContent = msg.error;
            };
        }
        if (boothId) { connect(); refresh(); }
    </script>
</body>
</html>`

const uploadPageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Import Photos</title>
    <style>
        body { font-family: Georgia, serif; background: #f9f5e7; color: #5e503f; text-align: center; padding: 40px; }
        .dropzone { border: 2px dashed #d2bd9e; border-radius: 8px; padding: 60px; margin: 20px auto; max-width: 500px; }
        button { padding: 10px 20px; background: #8b4513; color: #f9f5e7; border: none; border-radius: 6px; cursor: pointer; }
    </style>
</head>
<body>
    <h1>Import Photos</h1>
    <p>Pick 3 photos to turn into a strip.</p>
    <div class="dropzone">
        <input type="file" id="photos" accept="image/*" multiple>
    </div>
    <div id="adjust"></div>
    <button id="go">Build My Strip</button>
    <p id="status"></p>
    <script>
        document.getElementById('photos').addEventListener('change', (ev) => {
            const adjust = document.getElementById('adjust');
            adjust.innerHTML = '';
            for (const f of ev.target.files) {
                const row = document.createElement('div');
                row.innerHTML = f.name +
                    ' shift x <input type="number" class="cropX" value="0">' +
                    ' shift y <input type="number" class="cropY" value="0">' +
                    ' zoom width <input type="number" class="cropWidth" value="0">';
                adjust.appendChild(row);
            }
        });
        document.getElementById('go').addEventListener('click', async () => {
            const input = document.getElementById('photos');
            const form = new FormData();
            form.append('boothId', sessionStorage.getItem('boothId') || '');
            for (const f of input.files) form.append('photos', f);
            for (const cls of ['cropX', 'cropY', 'cropWidth'])
                for (const el of document.querySelectorAll('.' + cls))
                    form.append(cls, el.value || '0');
            const resp = await fetch('/upload', { method: 'POST', body: form });
            const result = await resp.json();
            if (!resp.ok) {
                document.getElementById('status').textContent = result.error;
                return;
            }
            sessionStorage.setItem('boothId', result.boothId);
            if (result.ready) location.href = '/booth';
            else document.getElementById('status').textContent =
                result.photoCount + ' of 3 photos loaded';
        });
    </script>
</body>
</html>`

const photobookPageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>My Photobook</title>
    <style>
        body { font-family: Georgia, serif; background: #f9f5e7; color: #5e503f; padding: 30px; }
        .filters { text-align: center; margin-bottom: 20px; }
        .grid { display: flex; flex-wrap: wrap; gap: 20px; justify-content: center; }
        .card { background: white; padding: 10px; border: 1px solid #d2bd9e; border-radius: 4px; width: 220px; }
        .card img { width: 100%; }
        .card .caption { font-style: italic; }
        .card .date { color: #8b4513; font-size: 0.8em; }
        textarea { width: 100%; }
    </style>
</head>
<body>
    <h1>My Photobook</h1>
    <div class="filters">
        <select id="year"><option value="">All years</option></select>
        <select id="month"><option value="">All months</option></select>
        <select id="day"><option value="">All days</option></select>
    </div>
    <div class="grid" id="grid"></div>
    <script>
        const q = () => {
            const p = new URLSearchParams();
            for (const id of ['year', 'month', 'day']) {
                const v = document.getElementById(id).value;
                if (v) p.set(id, v);
            }
            return p;
        };
        async function loadDates() {
            const resp = await fetch('/api/sessions/dates?' + q());
            const opts = await resp.json();
            fill('year', opts.years || []);
            fill('month', opts.months || []);
            fill('day', opts.days || []);
        }
        function fill(id, values) {
            const sel = document.getElementById(id);
            const current = sel.value;
            while (sel.options.length > 1) sel.remove(1);
            for (const v of values) sel.add(new Option(v, v));
            sel.value = current;
        }
        async function loadSessions() {
            const resp = await fetch('/api/sessions?' + q());
            const sessions = await resp.json();
            const grid = document.getElementById('grid');
            grid.innerHTML = '';
            for (const s of sessions) {
                const card = document.createElement('div');
                card.className = 'card';
                const thumbPath = new URL(s.photostrip_url).pathname.replace('/storage/', '/thumbnail/');
                card.innerHTML =
                    '<a href="' + s.photostrip_url + '"><img src="' + thumbPath + '"></a>' +
                    '<div class="caption">' + (s.captions || '') + '</div>' +
                    '<div class="date">' + new Date(s.created_at).toLocaleDateString() + '</div>' +
                    '<textarea placeholder="Memory notes">' + (s.memory_notes || '') + '</textarea>' +
                    '<button>Save notes</button>';
                card.querySelector('button').addEventListener('click', async () => {
                    await fetch('/api/strip/update', {
                        method: 'POST',
                        headers: {'Content-Type': 'application/json'},
                        body: JSON.stringify({
                            sessionId: s.id,
                            captions: s.captions || '',
                            memoryNotes: card.querySelector('textarea').value,
                        }),
                    });
                });
                grid.appendChild(card);
            }
        }
        for (const id of ['year', 'month', 'day'])
            document.getElementById(id).addEventListener('change', () => { loadDates(); loadSessions(); });
        loadDates();
        loadSessions();
    </script>
</body>
</html>`

const loginPageTemplate = `<!DOCTYPE html>
<html>
<head>
    <title>Sign In</title>
    <style>
        body { font-family: Georgia, serif; background: #f9f5e7; color: #5e503f; text-align: center; padding: 60px; }
        .error { color: #a52a2a; }
        input { padding: 8px; }
        button { padding: 10px 20px; background: #8b4513; color: #f9f5e7; border: none; border-radius: 6px; cursor: pointer; }
    </style>
</head>
<body>
    <h1>Sign In</h1>
    {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
    <form action="/auth/callback" method="get">
        <input type="text" name="code" placeholder="Your name" required>
        <button type="submit">Sign in</button>
    </form>
    <p><a href="/">Back home</a></p>
</body>
</html>`
