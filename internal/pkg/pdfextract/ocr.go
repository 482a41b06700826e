package pdfextract

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
)

// ocrAvailable reports whether the tesseract binary is on PATH.
func ocrAvailable() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}

// runOCR writes img to a temp PNG and runs tesseract on it.
func runOCR(img image.Image, lang string) (string, error) {
	tmp, err := os.CreateTemp("", "chatpdf-ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create ocr temp file failed: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("encode ocr page failed: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close ocr temp file failed: %w", err)
	}

	out, err := exec.Command("tesseract", tmp.Name(), "stdout", "-l", lang).Output()
	if err != nil {
		return "", fmt.Errorf("tesseract failed: %w", err)
	}
	return string(out), nil
}
