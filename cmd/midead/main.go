// Command midead is the host binary: it opens a serial port to a
// Midea air-conditioner indoor unit, drives the appliance façade's
// event loop, and exposes a status page and Prometheus metrics.
package main

import (
	"bytes"
	"flag"
	"html/template"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/gokrazy/gokrazy"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mideago/ac"
	"mideago/internal/frame"
	"mideago/internal/netinfo"
	"mideago/internal/serialstream"
)

var (
	serialPort = flag.String("serial_port",
		"/dev/ttyUSB0",
		"path to a serial port to communicate with the air conditioner")

	baud = flag.Int("baud",
		int(serialstream.Baud4800),
		"termios baud constant for the serial port")

	listenAddress = flag.String("listen",
		":8014",
		"host:port to listen on")
)

const statusTmplContents = `
<!DOCTYPE html>
<title>midead</title>
<body>
<h1>Air conditioner</h1>
<table width="100%">
{{ .Status }}
</table>
`

var statusTmpl = template.Must(template.New("status").Parse(statusTmplContents))

func handleStatus(unit *ac.AirConditioner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := statusTmpl.Execute(&buf, struct{ Status template.HTML }{Status: unit.HTML()}); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		io.Copy(w, &buf)
	}
}

func main() {
	flag.Parse()

	gokrazy.WaitForClock()

	log.Printf("opening serial port %s", *serialPort)
	port, err := serialstream.Open(*serialPort, uint32(*baud))
	if err != nil {
		log.Fatal(err)
	}
	defer port.Close()

	net := netinfo.Static{Connected: true, RSSIDBm: -60}

	unit := ac.New(port, net)

	start := time.Now()
	nowMS := func() int64 { return time.Since(start).Milliseconds() }

	unit.Setup(nowMS())

	r := mux.NewRouter()
	r.HandleFunc("/", handleStatus(unit))
	r.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: *listenAddress, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	log.Printf("entering driver loop")

	deserializer := &frame.Deserializer{}
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		now := nowMS()

		for port.Available() > 0 {
			b, ok := port.Read()
			if !ok {
				break
			}
			if f, complete := deserializer.Push(b); complete {
				unit.Receive(f, now)
			}
		}

		unit.Tick(now)
	}
}
