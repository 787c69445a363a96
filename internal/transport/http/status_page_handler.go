package http

import (
	"fmt"
	"net/http"
	"time"
)

// ServeStatusPage serves the minimal built-in status page at /
func ServeStatusPage(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `
<!DOCTYPE html>
<html lang="pt">
<head>
    <title>AVR Pulse - Ocupação de Vagas</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; }
        .status { padding: 10px; margin: 10px 0; border-radius: 4px; }
        .info { background-color: #d1ecf1; color: #0c5460; }
        form { margin: 20px 0; padding: 15px; border: 1px solid #ccc; border-radius: 4px; }
        label { display: block; margin: 6px 0 2px; }
    </style>
</head>
<body>
    <h1>AVR Pulse - Ocupação de Vagas</h1>
    <div class="status info">
        <strong>Status:</strong> Application is running
        <br><strong>Version:</strong> %s
        <br><strong>Time:</strong> %s
    </div>
    <form action="/api/aggregate" method="post" enctype="multipart/form-data">
        <strong>Enviar inventário (.xlsx / .xls)</strong>
        <label for="file">Ficheiro</label>
        <input type="file" id="file" name="file" accept=".xlsx,.xls" required>
        <label for="capacity_total">Capacidade total</label>
        <input type="number" id="capacity_total" name="capacity_total" placeholder="4060">
        <label for="capacity_075">Capacidade 0.75m</label>
        <input type="number" id="capacity_075" name="capacity_075" placeholder="2030">
        <label for="capacity_150">Capacidade 1.50m</label>
        <input type="number" id="capacity_150" name="capacity_150" placeholder="2030">
        <p><button type="submit">Agregar</button></p>
    </form>
    <h2>Quick Links</h2>
    <ul>
        <li><a href="/api/reports">Stored Reports</a></li>
        <li><a href="/api/capacities">Capacity Defaults</a></li>
        <li><a href="/api/health">Health Check</a></li>
        <li><a href="/api/version">Version Info</a></li>
        <li><a href="/metrics">Metrics</a></li>
    </ul>
</body>
</html>
		`, version, time.Now().Format("2006-01-02 15:04:05"))
	}
}
