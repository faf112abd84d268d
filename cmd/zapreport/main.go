package main

import "github.com/yorozuya-cybersecurity/zap-report/pkg/cli"

func main() {
	cli.Execute()
}
