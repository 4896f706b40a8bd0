package sdmx

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const constraintBody = `{
  "data": {
    "contentConstraints": [{
      "id": "CC_LFS_DE",
      "constraintAttachment": {"provisionAgreements": ["urn:x=ESTAT:LFS_2020_DE(1.0)"]},
      "cubeRegions": [
        {"isIncluded": true, "keyValues": [{"id": "SEX", "values": ["M"]}]},
        {"isIncluded": false, "attributes": [{"id": "AGE", "values": [{"value": "Y15"}, {"value": "Y16"}]}]}
      ]
    }]
  }
}`

func TestMessage_DecodeConstraint(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(constraintBody), &msg))
	require.NotNil(t, msg.Data)

	cc := msg.Data.ContentConstraints
	require.Len(t, cc, 1)
	require.Equal(t, []string{"urn:x=ESTAT:LFS_2020_DE(1.0)"}, cc[0].ConstraintAttachment.URNs("provisionAgreements"))
	require.Nil(t, cc[0].ConstraintAttachment.URNs("dataflows"))
	require.Len(t, cc[0].CubeRegions, 2)
	require.True(t, cc[0].CubeRegions[0].IsIncluded)
	require.Equal(t, ValueSelect{"M"}, cc[0].CubeRegions[0].KeyValues[0].Values)
	require.Equal(t, ValueSelect{"Y15", "Y16"}, cc[0].CubeRegions[1].Attributes[0].Values)
}

func TestAttachment_KeepsDocumentOrder(t *testing.T) {
	var a Attachment
	require.NoError(t, json.Unmarshal([]byte(`{"provisionAgreements": ["urn:pa"], "dataflows": ["urn:df"]}`), &a))
	require.Equal(t, []string{"provisionAgreements", "dataflows"}, a.Levels())
	require.Equal(t, []string{"urn:df"}, a.URNs("dataflows"))

	out, err := json.Marshal(a)
	require.NoError(t, err)
	require.Equal(t, `{"provisionAgreements":["urn:pa"],"dataflows":["urn:df"]}`, string(out))

	var empty Attachment
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	require.Empty(t, empty.Levels())
	require.Error(t, json.Unmarshal([]byte(`["urn:df"]`), &empty))
	require.Error(t, json.Unmarshal([]byte(`{"dataflows": "urn:df"}`), &empty))
}

func TestMessage_MissingData(t *testing.T) {
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(`{"meta": {}}`), &msg))
	require.Nil(t, msg.Data)
}

func TestValueSelect_RejectsGarbage(t *testing.T) {
	var v ValueSelect
	require.Error(t, json.Unmarshal([]byte(`{"value": "M"}`), &v))
	require.Error(t, json.Unmarshal([]byte(`[1, 2]`), &v))
}

func TestNameable_Fallbacks(t *testing.T) {
	n := Nameable{Names: Names{"en": "Sex"}, Descriptions: Names{"en": "Sex of person"}}
	require.Equal(t, "Sex", n.Label())
	require.Equal(t, "Sex of person", n.Text())

	n.Name = "Gender"
	require.Equal(t, "Gender", n.Label())
	require.Equal(t, "", Nameable{}.SelfURN())
	require.Equal(t, "urn:a", Nameable{Links: []Link{{URN: "urn:a"}, {URN: "urn:b"}}}.SelfURN())
}

func TestNewBundle(t *testing.T) {
	require.Equal(t, Bundle{DfID: "DF"}, NewBundle("DF", &Message{}))

	msg := &Message{Data: &Structures{ProvisionAgreements: []ProvisionAgreement{{Nameable{ID: "LFS_DE"}}}}}
	b := NewBundle("DF", msg)
	require.Equal(t, "DF", b.DfID)
	require.Len(t, b.ProvisionAgreements, 1)
}
