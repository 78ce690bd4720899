// Command heartsctl reads and writes one identity's social graph, posts and
// messages directly against the record store.
package main

func main() {
	Execute()
}
