package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/auth"
	"github.com/slahaldynsalmmhdly-ai/shipping-app-fixed-sub001/internal/model"
)

func runLogin() {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	userJSON := fs.String("user", "", `User JSON as the server returns it, e.g. '{"_id":"...","name":"..."}'`)
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: shipctl login [-user JSON] <token>")
		os.Exit(1)
	}

	var user model.User
	if *userJSON != "" {
		var ref model.UserRef
		if err := json.Unmarshal([]byte(*userJSON), &ref); err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid -user: %v\n", err)
			os.Exit(1)
		}
		user = ref.User()
	}

	cfg := loadConfig()
	st := openKV(cfg)
	defer st.Close()

	session := auth.NewSession(st)
	if err := session.SignIn(fs.Arg(0), user); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	printViewer(session)
}

func runLogout() {
	cfg := loadConfig()
	st := openKV(cfg)
	defer st.Close()

	if err := auth.NewSession(st).SignOut(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Signed out")
}

func runWhoami() {
	cfg := loadConfig()
	st := openKV(cfg)
	defer st.Close()

	printViewer(auth.NewSession(st))
}

func printViewer(session *auth.Session) {
	u, err := session.Viewer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	name := u.Name
	if name == "" {
		name = "(no name)"
	}
	fmt.Printf("Signed in as %s [%s]\n", name, u.ID)
}
