// Package server hosts navigation routers behind a websocket.
//
// Every page request is answered with the same HTML shell. The shell's
// script opens a websocket to the socket path and sends a hello message with
// the address bar location. From then on the browser is a thin client: the
// server owns one nav.Router per connection, drives the browser's history
// through push, replace and go commands, and tells it which view to mount.
//
// # Messages
//
// Client to server:
//
//	{"type":"hello","path":"/module2?tab=1","index":0}
//	{"type":"navigate","path":"/module3","replace":false}
//	{"type":"location","path":"/module1","index":0}   // after popstate
//	{"type":"back"}
//	{"type":"forward"}
//
// Server to client:
//
//	{"op":"push","path":"/module3"}
//	{"op":"replace","path":"/module1"}
//	{"op":"go","delta":-1}
//	{"op":"mount","view":"ModuleThreeView"}
//	{"op":"state","path":"/module3","view":"ModuleThreeView","index":1}
//	{"op":"error","code":"N001","message":"..."}
//
// Paths in history commands carry the configured base prefix; paths in
// navigate messages are application paths.
package server
