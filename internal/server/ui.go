package server

const uiHTML = `<!doctype html>
<html>
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>Presidential Economic Dashboard</title>
  <script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
  <style>
    body { font-family: ui-sans-serif, system-ui, -apple-system, Segoe UI, Roboto, Arial; margin: 0; background: #f7f8fa; }
    header { background: #1F4E79; color: #fff; padding: 16px 24px; }
    main { padding: 16px 24px; }
    .card { background: #fff; border: 1px solid #e3e6ea; border-radius: 8px; margin-bottom: 16px; }
    .card-head { display: flex; justify-content: space-between; align-items: center; padding: 12px 16px; }
    .card-head h2 { margin: 0; font-size: 18px; }
    .card-body { padding: 0 16px 16px; display: none; }
    .card.expanded .card-body { display: block; }
    .summary { font-size: 16px; margin: 8px 0 12px; }
    .summary b { color: #1F4E79; }
    .charts { display: grid; grid-template-columns: repeat(auto-fit, minmax(420px, 1fr)); gap: 12px; }
    .chart { height: 320px; }
    button { cursor: pointer; border: 1px solid #1F4E79; background: #fff; color: #1F4E79; border-radius: 6px; padding: 6px 12px; }
    .err { color: #BA0C2F; }
  </style>
</head>
<body>
<header><h1>Presidential Economic Dashboard</h1></header>
<main>
  <div id="cards"></div>
  <section class="card expanded">
    <div class="card-head"><h2>Inflation Overview</h2></div>
    <div class="card-body">
      <div class="charts">
        <div id="overview-trends" class="chart"></div>
        <div id="overview-ma" class="chart"></div>
      </div>
    </div>
  </section>
</main>
<script>
async function api(method, path) {
  const res = await fetch(path, { method });
  const body = await res.json();
  if (!res.ok) throw new Error(body.error || res.statusText);
  return body;
}

function plot(el, chart) {
  const traces = chart.series.map(s => ({
    type: 'scatter',
    mode: 'lines',
    name: s.name,
    x: s.points.map(p => p.x),
    y: s.points.map(p => p.y),
    line: { color: s.color, dash: s.dash || 'solid' },
  }));
  Plotly.newPlot(el, traces, {
    title: chart.source ? chart.title + '<br><sub>Source: ' + chart.source + '</sub>' : chart.title,
    xaxis: { title: chart.xAxis },
    yaxis: { title: chart.yAxis },
    showlegend: chart.showLegend,
    margin: { l: 50, r: 20, t: 50, b: 40 },
    paper_bgcolor: 'rgba(0,0,0,0)',
    plot_bgcolor: 'rgba(0,0,0,0)',
  }, { responsive: true });
}

async function renderBody(card, id) {
  const body = card.querySelector('.card-body');
  body.innerHTML = '';
  try {
    const view = await api('GET', '/api/cards/' + encodeURIComponent(id));
    const summary = document.createElement('div');
    summary.className = 'summary';
    summary.innerHTML = view.summary.label + ' <b></b>';
    summary.querySelector('b').textContent = view.summary.change;
    body.appendChild(summary);
    const grid = document.createElement('div');
    grid.className = 'charts';
    body.appendChild(grid);
    view.charts.forEach(chart => {
      const el = document.createElement('div');
      el.className = 'chart';
      grid.appendChild(el);
      plot(el, chart);
    });
  } catch (e) {
    body.innerHTML = '<p class="err"></p>';
    body.querySelector('.err').textContent = e.message;
  }
}

function applyState(card, id, state) {
  const button = card.querySelector('button');
  card.classList.toggle('expanded', state === 'expanded');
  button.textContent = state === 'expanded' ? 'Minimize' : 'Reveal';
  button.dataset.event = state === 'expanded' ? 'minimize' : 'reveal';
  if (state === 'expanded') renderBody(card, id);
}

async function load() {
  const root = document.getElementById('cards');
  const { cards } = await api('GET', '/api/cards');
  cards.forEach(c => {
    const card = document.createElement('section');
    card.className = 'card';
    card.innerHTML = '<div class="card-head"><h2></h2><button></button></div><div class="card-body"></div>';
    card.querySelector('h2').textContent = c.label;
    card.querySelector('button').addEventListener('click', async ev => {
      const res = await api('POST', '/api/cards/' + encodeURIComponent(c.id) + '/' + ev.target.dataset.event);
      applyState(card, c.id, res.state);
    });
    root.appendChild(card);
    applyState(card, c.id, c.state);
  });

  const overview = await api('GET', '/api/overview');
  plot(document.getElementById('overview-trends'), overview.inflationTrends);
  plot(document.getElementById('overview-ma'), overview.cpiMovingAverages);
}

load().catch(e => {
  document.getElementById('cards').innerHTML = '<p class="err"></p>';
  document.querySelector('#cards .err').textContent = e.message;
});
</script>
</body>
</html>
`
