package remote

const htmlContent = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>objview remote</title>
    <style>
        body { margin: 0; padding: 20px; font-family: monospace; background: #1b1b1f; color: #ddd; }
        h1 { font-size: 18px; }
        #controls { margin-bottom: 15px; }
        input[type=text] { width: 320px; background: #2a2a30; color: #ddd; border: 1px solid #444; padding: 4px; }
        button { background: #2a2a30; color: #ddd; border: 1px solid #444; padding: 4px 10px; cursor: pointer; }
        button:hover { background: #3a3a42; }
        #log { border: 1px solid #333; padding: 10px; height: 300px; overflow-y: auto; white-space: pre-wrap; }
        .err { color: #e06c75; }
        .ok { color: #98c379; }
    </style>
</head>
<body>
    <h1>objview remote</h1>
    <div id="controls">
        <input type="text" id="objUrl" placeholder="OBJ path or URL">
        <input type="text" id="mtlUrl" placeholder="MTL path or URL (optional)">
        <button onclick="load()">Load</button>
        <button onclick="send({op:'show'})">Show</button>
        <button onclick="send({op:'hide'})">Hide</button>
        <button onclick="send({op:'clear'})">Clear</button>
        <label>FPS <input type="number" id="fps" value="25" min="1" max="240" style="width:60px">
        <button onclick="send({op:'fps', fps: parseInt(document.getElementById('fps').value)})">Set</button></label>
    </div>
    <div id="log"></div>
    <script>
        const log = document.getElementById('log');
        function append(msg, cls) {
            const line = document.createElement('div');
            line.textContent = new Date().toLocaleTimeString() + ' ' + msg;
            if (cls) line.className = cls;
            log.appendChild(line);
            log.scrollTop = log.scrollHeight;
        }

        const ws = new WebSocket('ws://' + location.host + '/ws');
        ws.onopen = () => append('connected', 'ok');
        ws.onclose = () => append('disconnected', 'err');
        ws.onmessage = (msg) => {
            const ev = JSON.parse(msg.data);
            if (ev.error) {
                append(ev.event + ': ' + (ev.url || '') + ' ' + ev.error, 'err');
            } else {
                append(ev.event + ': ' + (ev.url || '') + ' ' + (ev.elapsed || ''), 'ok');
            }
        };

        function send(cmd) { ws.send(JSON.stringify(cmd)); }
        function load() {
            send({op: 'load',
                  url: document.getElementById('objUrl').value,
                  mtl: document.getElementById('mtlUrl').value});
        }
    </script>
</body>
</html>
`
