package web

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"accontrol/internal/events"
)

const pageStyle = `body{font-family:sans-serif;max-width:480px;margin:2em auto;padding:0 1em;color:#222}
h1{font-size:1.3em}input,select,button{font-size:1em;padding:.4em;margin:.3em 0;width:100%;box-sizing:border-box}
button{background:#2a6fdb;color:#fff;border:none;border-radius:4px;cursor:pointer}
button.no{background:#aaa}table{width:100%;border-collapse:collapse}td{padding:.3em 0;border-bottom:1px solid #eee}
ul.events{list-style:none;padding:0;font-size:.85em}ul.events li{border-bottom:1px solid #eee;padding:.2em 0}
.fail{color:#b00}`

func renderPage(w http.ResponseWriter, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><meta charset="utf-8"><meta name="viewport" content="width=device-width,initial-scale=1">
<title>%s</title><style>%s</style></head>
<body><h1>%s</h1>
%s
</body></html>`, html.EscapeString(title), pageStyle, html.EscapeString(title), body)
}

func setupPageBody(networks []string) string {
	var options strings.Builder
	for _, ssid := range networks {
		esc := html.EscapeString(ssid)
		fmt.Fprintf(&options, `<option value="%s">%s</option>`, esc, esc)
	}

	var picker string
	if options.Len() > 0 {
		picker = fmt.Sprintf(`<label>Network</label><select name="ssid">%s</select>`, options.String())
	} else {
		picker = `<label>Network</label><input name="ssid" placeholder="Network name" required>`
	}

	return fmt.Sprintf(`<p>Select your wireless network to bring this AC controller online.</p>
<form method="POST" action="/submit">
%s
<label>Password</label><input type="password" name="password" placeholder="Network password">
<button type="submit">Connect</button>
</form>`, picker)
}

func configPageBody(brands []string) string {
	var options strings.Builder
	for _, b := range brands {
		esc := html.EscapeString(b)
		fmt.Fprintf(&options, `<option value="%s">%s</option>`, esc, esc)
	}

	return fmt.Sprintf(`<p>Tell us about the AC unit this device points at.</p>
<form method="POST" action="/config">
<label>Customer ID</label><input name="customer_id" required>
<label>Zone ID</label><input name="zone_id" required>
<label>AC brand</label><select name="ac_brand">%s</select>
<label><input type="checkbox" name="skip_testing" value="1" style="width:auto"> Skip protocol testing</label>
<button type="submit">Continue</button>
</form>`, options.String())
}

func testPageBody(brand, protocol string, pos, total int) string {
	return fmt.Sprintf(`<p>A test signal for <b>%s</b> (protocol %s, candidate %d of %d) was just sent.</p>
<p><b>Did the AC unit react?</b> It should turn on in cool mode at 25&deg;.</p>
<form method="POST" action="/result"><input type="hidden" name="verdict" value="yes"><button type="submit">Yes, it responded</button></form>
<form method="POST" action="/result"><input type="hidden" name="verdict" value="no"><button type="submit" class="no">No, nothing happened</button></form>`,
		html.EscapeString(brand), html.EscapeString(protocol), pos, total)
}

func exhaustedPageBody(brand string) string {
	return fmt.Sprintf(`<p class="fail">No working protocol was found for <b>%s</b>.</p>
<p>Double-check the brand selection and that the emitter has line of sight to the unit.</p>
<p><a href="/config">Back to configuration</a></p>`, html.EscapeString(brand))
}

func rebootPageBody(message string) string {
	return fmt.Sprintf(`<p>%s</p><p>The device is restarting and will be back in a few seconds.</p>`,
		html.EscapeString(message))
}

type statusData struct {
	DeviceID   string
	Version    string
	SSID       string
	RSSI       int
	CustomerID string
	ZoneID     string
	Brand      string
	Protocol   string
	Bus        bool
	Power      bool
	Mode       string
	Degrees    int
	Fanspeed   string
	Events     []events.Event
}

func statusPageBody(d statusData) string {
	busState := `<span class="fail">disconnected</span>`
	if d.Bus {
		busState = "connected"
	}
	power := "off"
	if d.Power {
		power = "on"
	}

	var evts strings.Builder
	for i := len(d.Events) - 1; i >= 0; i-- {
		ev := d.Events[i]
		class := ""
		if !ev.Success {
			class = ` class="fail"`
		}
		fmt.Fprintf(&evts, `<li%s>%s [%s] %s</li>`, class,
			ev.Timestamp.Format("15:04:05"), html.EscapeString(string(ev.Type)), html.EscapeString(ev.Details))
	}

	return fmt.Sprintf(`<table>
<tr><td>Device</td><td>%s</td></tr>
<tr><td>Firmware</td><td>%s</td></tr>
<tr><td>Network</td><td>%s (%d dBm)</td></tr>
<tr><td>Customer / zone</td><td>%s / %s</td></tr>
<tr><td>AC</td><td>%s (protocol %s)</td></tr>
<tr><td>Command bus</td><td>%s</td></tr>
<tr><td>AC state</td><td>power %s, %s, %d&deg;, fan %s</td></tr>
</table>
<h1>Recent events</h1>
<ul class="events">%s</ul>
<form method="POST" action="/reset" onsubmit="return confirm('Erase all settings?')">
<button type="submit" class="no">Factory reset</button>
</form>`,
		html.EscapeString(d.DeviceID), html.EscapeString(d.Version),
		html.EscapeString(d.SSID), d.RSSI,
		html.EscapeString(d.CustomerID), html.EscapeString(d.ZoneID),
		html.EscapeString(d.Brand), html.EscapeString(d.Protocol),
		busState, power, html.EscapeString(d.Mode), d.Degrees, html.EscapeString(d.Fanspeed),
		evts.String())
}
