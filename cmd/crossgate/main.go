// crossgate es la CLI operativa: manejo de secretos de federación, decode de
// tokens y cálculo de hashes para diagnóstico.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/crossgate-id/crossgate/internal/security/passwd"
	"github.com/crossgate-id/crossgate/internal/security/rsacrypt"
)

func main() {
	root := &cobra.Command{
		Use:           "crossgate",
		Short:         "Herramientas operativas de crossgate",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(secretsCmd(), tokenCmd(), hashCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func secretsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Cifrado de secretos de federación (RSA)",
	}

	var keyPath, value string

	encrypt := &cobra.Command{
		Use:   "encrypt",
		Short: "Cifra un client secret para guardarlo en la tabla federations",
		RunE: func(cmd *cobra.Command, args []string) error {
			kr, err := rsacrypt.LoadFile(keyPath)
			if err != nil {
				return err
			}
			enc, err := kr.EncryptSecret(value)
			if err != nil {
				return err
			}
			fmt.Println(enc)
			return nil
		},
	}
	encrypt.Flags().StringVar(&keyPath, "key", "", "ruta al PEM de la clave privada")
	encrypt.Flags().StringVar(&value, "value", "", "secreto en claro")
	_ = encrypt.MarkFlagRequired("key")
	_ = encrypt.MarkFlagRequired("value")

	decrypt := &cobra.Command{
		Use:   "decrypt",
		Short: "Descifra un secreto guardado (diagnóstico)",
		RunE: func(cmd *cobra.Command, args []string) error {
			kr, err := rsacrypt.LoadFile(keyPath)
			if err != nil {
				return err
			}
			plain, err := kr.DecryptSecret(value)
			if err != nil {
				return err
			}
			fmt.Println(plain)
			return nil
		},
	}
	decrypt.Flags().StringVar(&keyPath, "key", "", "ruta al PEM de la clave privada")
	decrypt.Flags().StringVar(&value, "value", "", "secreto cifrado (base64)")
	_ = decrypt.MarkFlagRequired("key")
	_ = decrypt.MarkFlagRequired("value")

	var bits int
	var out string
	keygen := &cobra.Command{
		Use:   "keygen",
		Short: "Genera una clave RSA nueva en PEM",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := rsa.GenerateKey(rand.Reader, bits)
			if err != nil {
				return err
			}
			pemBytes := pem.EncodeToMemory(&pem.Block{
				Type:  "RSA PRIVATE KEY",
				Bytes: x509.MarshalPKCS1PrivateKey(priv),
			})
			if out == "" {
				fmt.Print(string(pemBytes))
				return nil
			}
			return os.WriteFile(out, pemBytes, 0o600)
		},
	}
	keygen.Flags().IntVar(&bits, "bits", 2048, "tamaño de la clave")
	keygen.Flags().StringVar(&out, "out", "", "archivo destino (stdout si se omite)")

	cmd.AddCommand(encrypt, decrypt, keygen)
	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspección de tokens",
	}

	var raw string
	decode := &cobra.Command{
		Use:   "decode",
		Short: "Muestra header y claims de un JWT sin verificar la firma",
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := jwtv5.NewParser()
			tok, _, err := parser.ParseUnverified(raw, jwtv5.MapClaims{})
			if err != nil {
				return fmt.Errorf("token ilegible: %w", err)
			}
			out, err := json.MarshalIndent(map[string]any{
				"header": tok.Header,
				"claims": tok.Claims,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	decode.Flags().StringVar(&raw, "token", "", "JWT a inspeccionar")
	_ = decode.MarkFlagRequired("token")

	cmd.AddCommand(decode)
	return cmd
}

func hashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Cálculo de hashes de password (diagnóstico)",
	}

	var password, saltB64, setAtStr string
	canonical := &cobra.Command{
		Use:   "canonical",
		Short: "Calcula el hash canónico iterado para un password/salt/fecha",
		RunE: func(cmd *cobra.Command, args []string) error {
			salt, err := base64.StdEncoding.DecodeString(saltB64)
			if err != nil {
				return fmt.Errorf("salt no es base64: %w", err)
			}
			var setAt *time.Time
			if setAtStr != "" {
				ts, err := time.Parse("2006-01-02", setAtStr)
				if err != nil {
					return fmt.Errorf("fecha inválida (YYYY-MM-DD): %w", err)
				}
				setAt = &ts
			}
			sum := passwd.CanonicalHash(password, salt, setAt)
			fmt.Println(hex.EncodeToString(sum))
			if setAt != nil {
				fmt.Printf("iterations=%d\n", passwd.IterationCount(*setAt))
			}
			return nil
		},
	}
	canonical.Flags().StringVar(&password, "password", "", "password en claro")
	canonical.Flags().StringVar(&saltB64, "salt", "", "salt en base64")
	canonical.Flags().StringVar(&setAtStr, "set-at", "", "fecha de seteo (YYYY-MM-DD)")
	_ = canonical.MarkFlagRequired("password")
	_ = canonical.MarkFlagRequired("salt")

	cmd.AddCommand(canonical)
	return cmd
}
