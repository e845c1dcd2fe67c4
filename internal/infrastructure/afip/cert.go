package afip

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// LoadCertificate carga el certificado de la empresa: .p12 si p12Path no está vacío, si no el par PEM.
func LoadCertificate(p12Path, p12Password, certPath, keyPath string) (tls.Certificate, error) {
	if p12Path != "" {
		return loadFromP12(p12Path, p12Password)
	}
	if certPath == "" {
		return tls.Certificate{}, errors.New("afip: falta AFIP_CERT_PATH o AFIP_P12_PATH")
	}
	if keyPath == "" {
		// Un solo archivo puede contener cert+key en PEM
		keyPath = certPath
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("afip: cargar PEM: %w", err)
	}
	if cert.Leaf == nil {
		if cert.Leaf, err = x509.ParseCertificate(cert.Certificate[0]); err != nil {
			return tls.Certificate{}, fmt.Errorf("afip: parsear certificado: %w", err)
		}
	}
	return cert, nil
}

func loadFromP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("afip: leer p12: %w", err)
	}
	priv, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("afip: decodificar p12: %w", err)
	}
	// WSAA sólo necesita el certificado hoja.
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}
