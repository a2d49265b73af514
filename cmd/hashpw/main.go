// Command hashpw prints a bcrypt hash for an AUTH_OPERATORS entry.
//
//	hashpw -email admin@corp.io -role ADMIN < password.txt
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spec-kit/org-directory/internal/auth"
	"github.com/spec-kit/org-directory/internal/domain"
)

func main() {
	cost := flag.Int("cost", 12, "bcrypt cost")
	email := flag.String("email", "", "operator email; when set the full AUTH_OPERATORS entry is printed")
	role := flag.String("role", string(domain.RoleViewer), "operator role (ADMIN or VIEWER)")
	flag.Parse()

	password, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && password == "" {
		log.Fatalf("read password from stdin: %v", err)
	}
	password = strings.TrimRight(password, "\r\n")

	hash, err := auth.HashPassword(password, *cost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	if *email == "" {
		fmt.Println(hash)
		return
	}
	r := domain.Role(strings.ToUpper(*role))
	if !r.Valid() {
		log.Fatalf("unknown role %q", *role)
	}
	fmt.Printf("%s:%s:%s\n", strings.ToLower(*email), r, hash)
}
