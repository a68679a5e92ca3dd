package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/M-itch/qtercon"
)

func main() {
	args := os.Args
	if len(args) < 4 {
		log.Fatalf("Usage: go run main.go HOST PORT PASSWORD")
	}
	port, err := strconv.Atoi(args[2])
	if err != nil {
		log.Fatalf("Failed to parse port: %v", err)
	}
	server := qtercon.Server{Host: args[1], Port: uint16(port), Password: args[3]}

	// Query the public server status, no password involved
	query, err := qtercon.NewQuery(server)
	if err != nil {
		log.Fatalf("Failed to open query socket: %v", err)
	}
	defer query.Close()

	if err := query.Send("getstatus"); err != nil {
		log.Fatalf("Failed to send getstatus: %v", err)
	}
	select {
	case msg := <-query.Receive():
		status := qtercon.ParseStatus(msg.Data)
		fmt.Printf("Basic example\nMap: %s, players: %d\n\n",
			status.Variables["mapname"], len(status.Players))
	case <-time.After(2 * time.Second):
		log.Fatal("No status response from the server")
	}

	// Send an rcon command and drain the response datagrams
	rcon, err := qtercon.NewRcon(server)
	if err != nil {
		log.Fatalf("Failed to open rcon socket: %v", err)
	}
	defer rcon.Close()

	if err := rcon.Send([]byte("status")); err != nil {
		log.Fatalf("Failed to send rcon command: %v", err)
	}

	fmt.Println("More involved example")
	for {
		select {
		case msg := <-rcon.Receive():
			fmt.Print(qtercon.RemoveColors(msg.Data))
		case <-time.After(500 * time.Millisecond):
			return
		}
	}
}
