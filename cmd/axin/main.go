// Command axin is the command-line client of the axin AI agent service. It
// chats with the backend over its sync and streaming endpoints and can run a
// local dev backend.
package main

func main() {
	Execute()
}
