package domain

const cpfLength = 11

// IsValidCpf checks an 11-digit CPF against its two trailing check digits.
// The input must already be digits only.
func IsValidCpf(cpf string) bool {
	if len(cpf) != cpfLength {
		return false
	}

	for i := 0; i < cpfLength; i++ {
		if cpf[i] < '0' || cpf[i] > '9' {
			return false
		}
	}

	// sequences like 00000000000 pass the checksum math, reject them first
	if isRepeatedDigit(cpf) {
		return false
	}

	for t := 9; t < cpfLength; t++ {
		sum := 0
		for c := 0; c < t; c++ {
			sum += int(cpf[c]-'0') * (t + 1 - c)
		}

		expected := ((sum * 10) % 11) % 10

		if int(cpf[t]-'0') != expected {
			return false
		}
	}

	return true
}

func isRepeatedDigit(cpf string) bool {
	for i := 1; i < len(cpf); i++ {
		if cpf[i] != cpf[0] {
			return false
		}
	}

	return true
}
