// Command npyread inspects and reads .npy sample files.
package main

import "github.com/robert-malhotra/go-npy/cmd/npyread/cmd"

func main() {
	cmd.Execute()
}
