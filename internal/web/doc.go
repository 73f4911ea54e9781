// Package web is the browser host for the capture widget.
//
// A chi router serves a single page with the capture field, a websocket
// endpoint at /ws, /healthz and optionally Prometheus metrics at /metrics.
// Every websocket connection gets its own Recorder. The page sends one
// JSON frame per browser event:
//
//	{"type":"keydown","key":"Control"}
//	{"type":"keyup","key":"Control"}
//	{"type":"blur"}
//	{"type":"write","value":"Alt+Tab"}
//	{"type":"reset"}
//
// and the server answers each with a snapshot:
//
//	{"display":["Control","K"],"value":"Control+K","inProgress":true,
//	 "isValid":true,"committed":true,"emitted":["Control+K"]}
//
// Malformed frames are answered with {"error":"..."} and otherwise ignored.
package web
