package app

import (
    "errors"
    "os"
    "strings"

    "github.com/joho/godotenv"
)

// LoadEnvFiles loads dotenv files into the process environment. Later files
// override earlier ones; variables already set to a non-empty value in the
// real environment are kept. Missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    merged := map[string]string{}
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        values, err := godotenv.Read(p)
        if err != nil {
            if errors.Is(err, os.ErrNotExist) {
                continue
            }
            return err
        }
        for k, v := range values {
            merged[k] = v
        }
    }
    for k, v := range merged {
        if os.Getenv(k) != "" {
            continue
        }
        if err := os.Setenv(k, v); err != nil {
            return err
        }
    }
    return nil
}
