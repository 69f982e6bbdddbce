/*
 * Copyright (c) 2025 Alessandro Faranda Gancio (dba TraceApi)
 *
 * This source code is licensed under the Business Source License 1.1.
 *
 * Change Date: 2027-11-28
 * Change License: AGPL-3.0
 */

package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func main() {
	// Must match JWT_SECRET on the server (default in internal/config/config.go)
	secret := flag.String("secret", "super-secret-dev-key-do-not-use-in-prod", "Signing secret")
	subject := flag.String("sub", "client-001", "Client identity carried in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	claims := jwt.MapClaims{
		"sub": *subject,
		"exp": time.Now().Add(*ttl).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(*secret))
	if err != nil {
		panic(err)
	}

	fmt.Println("Generated JWT Token:")
	fmt.Println(tokenString)
	fmt.Println("\nCurl Command:")
	fmt.Printf("curl -v http://localhost:8080/v1/cep/01001-000 \\\n  -H \"Authorization: Bearer %s\"\n", tokenString)
}
