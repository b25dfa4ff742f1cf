/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package app_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestApp(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "sportstore CLI Suite")
}
