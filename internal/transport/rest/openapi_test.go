package rest_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// The served API contract must stay loadable and internally consistent;
// Swagger UI renders whatever this file says.
var _ = Describe("OpenAPI contract", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("../../../api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("validates against the OpenAPI 3 schema", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("documents the access workflow routes", func() {
		for _, path := range []string{
			"/access/requests",
			"/access/requests/pending",
			"/access/requests/{id}",
			"/access/requests/history",
			"/access/grantors",
			"/access/revoke",
			"/users/{id}/permission",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("documents every record collection", func() {
		for _, path := range []string{"/leads", "/customers", "/opportunities", "/communications"} {
			item := doc.Paths.Find(path)
			Expect(item).NotTo(BeNil(), "missing path %s", path)
			Expect(item.Get).NotTo(BeNil(), "missing GET %s", path)
			Expect(item.Post).NotTo(BeNil(), "missing POST %s", path)
		}
	})
})
