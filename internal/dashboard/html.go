package dashboard

import "html/template"

var page = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Inter', -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; display: flex; }
        aside { width: 300px; background: #1e293b; border-right: 1px solid #334155; padding: 1.5rem; }
        aside h2 { font-size: 1rem; margin-bottom: 1rem; color: #94a3b8; }
        label { display: block; font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; margin: 1rem 0 0.25rem; }
        select, input { width: 100%; padding: 0.5rem; background: #0f172a; color: #e2e8f0; border: 1px solid #475569; border-radius: 6px; }
        button { margin-top: 1.5rem; width: 100%; padding: 0.75rem; border: 0; border-radius: 8px; background: linear-gradient(135deg, #38bdf8, #818cf8); color: #0f172a; font-weight: 700; cursor: pointer; }
        button:disabled { opacity: 0.5; cursor: wait; }
        main { flex: 1; padding: 2rem; overflow-x: auto; }
        main h1 { font-size: 1.5rem; margin-bottom: 0.5rem; background: linear-gradient(135deg, #38bdf8, #818cf8); background-clip: text; -webkit-background-clip: text; -webkit-text-fill-color: transparent; }
        .grid { display: grid; grid-template-columns: repeat(auto-fit, minmax(160px, 1fr)); gap: 1rem; margin: 1.5rem 0; }
        .card { background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1rem; }
        .card .label { font-size: 0.7rem; text-transform: uppercase; color: #94a3b8; }
        .card .value { font-size: 1.5rem; font-weight: 700; }
        .msg { padding: 0.75rem 1rem; border-radius: 8px; margin: 1rem 0; display: none; }
        .msg.success { display: block; background: #166534; color: #bbf7d0; }
        .msg.warning { display: block; background: #854d0e; color: #fef08a; }
        .msg.error { display: block; background: #991b1b; color: #fecaca; }
        table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #334155; vertical-align: top; }
        th { color: #94a3b8; }
        td.isi { max-width: 480px; }
        a { color: #38bdf8; }
        .download { display: none; margin: 1rem 0; }
    </style>
</head>
<body>
    <aside>
        <h2>⚙️ Konfigurasi Scraper</h2>
        <label for="portal">Portal Berita</label>
        <select id="portal"></select>
        <label for="start">Tanggal Mulai</label>
        <input type="date" id="start" value="2025-08-01">
        <label for="end">Tanggal Akhir</label>
        <input type="date" id="end" value="2025-08-31">
        <label for="pages">Halaman Maksimal: <span id="pagesValue">5</span></label>
        <input type="range" id="pages" min="1" max="50" value="5">
        <label for="mode">Klasifikasi</label>
        <select id="mode">
            <option value="none">Tanpa klasifikasi</option>
            <option value="multi">Multi-label (maks. 3)</option>
            <option value="single">Satu label</option>
        </select>
        <button id="run">🚀 Mulai Scraping</button>
    </aside>
    <main>
        <h1>📡 {{.Title}}</h1>
        <p>Mengambil berita dari portal di Kepri berdasarkan rentang tanggal.</p>
        <div class="grid">
            <div class="card"><div class="label">Halaman</div><div class="value" id="listing_pages">0</div></div>
            <div class="card"><div class="label">Artikel Diambil</div><div class="value" id="articles_kept">0</div></div>
            <div class="card"><div class="label">Di Luar Rentang</div><div class="value" id="articles_out_of_range">0</div></div>
            <div class="card"><div class="label">Gagal Diunduh</div><div class="value" id="fetch_failures">0</div></div>
        </div>
        <div class="msg" id="msg"></div>
        <a class="download" id="download">📥 Download Hasil sebagai Excel</a>
        <table id="results"></table>
    </main>
    <script>
        const $ = id => document.getElementById(id);
        $('pages').oninput = () => { $('pagesValue').textContent = $('pages').value; };

        async function loadPortals() {
            const r = await fetch('/api/portals');
            for (const p of await r.json()) {
                const o = document.createElement('option');
                o.value = p.id; o.textContent = p.name;
                $('portal').appendChild(o);
            }
        }

        async function refreshStats() {
            try {
                const d = await (await fetch('/api/stats')).json();
                ['listing_pages', 'articles_kept', 'articles_out_of_range', 'fetch_failures'].forEach(k => {
                    if (d[k] !== undefined) $(k).textContent = Number(d[k]).toLocaleString();
                });
            } catch (e) {}
        }

        function show(kind, text) { $('msg').className = 'msg ' + kind; $('msg').textContent = text; }

        function cell(row, text, cls) {
            const td = document.createElement('td');
            if (cls) td.className = cls;
            td.textContent = text || '';
            row.appendChild(td);
            return td;
        }

        function render(job) {
            const t = $('results');
            t.innerHTML = '';
            if (!job.articles || job.articles.length === 0) return;
            const classified = job.articles.some(a => a.categories);
            const head = document.createElement('tr');
            (classified ? ['Kategori', 'Tanggal', 'Judul', 'Isi', 'Link'] : ['Tanggal', 'Judul', 'Isi', 'Link'])
                .forEach(h => { const th = document.createElement('th'); th.textContent = h; head.appendChild(th); });
            t.appendChild(head);
            for (const a of job.articles) {
                const row = document.createElement('tr');
                if (classified) cell(row, (a.categories || []).join(', '));
                cell(row, a.date);
                cell(row, a.title);
                cell(row, a.body, 'isi');
                const link = document.createElement('a');
                link.href = a.url; link.textContent = a.url; link.target = '_blank';
                cell(row, '').appendChild(link);
                t.appendChild(row);
            }
        }

        $('run').onclick = async () => {
            if ($('start').value > $('end').value) {
                show('error', '❌ Error: Tanggal mulai tidak boleh melebihi tanggal akhir.');
                return;
            }
            const portalName = $('portal').selectedOptions[0].textContent;
            $('run').disabled = true;
            $('download').style.display = 'none';
            $('results').innerHTML = '';
            show('warning', 'Mengambil berita dari ' + portalName + '... Mohon tunggu ⏳');
            try {
                const r = await fetch('/api/scrape', {
                    method: 'POST',
                    headers: { 'Content-Type': 'application/json' },
                    body: JSON.stringify({
                        portal: $('portal').value,
                        start: $('start').value,
                        end: $('end').value,
                        max_pages: Number($('pages').value),
                        mode: $('mode').value,
                    }),
                });
                const job = await r.json();
                if (!r.ok && !job.id) { show('error', '❌ ' + job.error); return; }
                if (job.classification_error) show('warning', '⚠️ Klasifikasi dinonaktifkan: ' + job.classification_error);
                if (job.article_count === 0) {
                    show('warning', '⚠️ Tidak ada artikel ditemukan di ' + portalName + ' dalam rentang waktu yang ditentukan.');
                } else {
                    if (!job.classification_error) show('success', '✅ Berhasil mengambil ' + job.article_count + ' artikel dari ' + portalName + '.');
                    $('download').href = '/api/jobs/' + job.id + '/export?format=xlsx';
                    $('download').style.display = 'inline-block';
                }
                render(job);
            } catch (e) {
                show('error', '❌ ' + e);
            } finally {
                $('run').disabled = false;
                refreshStats();
            }
        };

        loadPortals();
        refreshStats();
        setInterval(refreshStats, 2000);
    </script>
</body>
</html>`))
