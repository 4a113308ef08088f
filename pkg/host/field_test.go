// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	tests := []struct {
		in     string
		want   Field
		wantOK bool
	}{
		{"name", FieldName, true},
		{"IP_ADDRESS", FieldIPAddress, true},
		{"ip", FieldIPAddress, true},
		{" groups ", FieldGroups, true},
		{"templates", FieldTemplates, true},
		{"status", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseField(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFields(t *testing.T) {
	t.Run("empty yields defaults", func(t *testing.T) {
		got, err := ParseFields("")
		require.NoError(t, err)
		assert.Equal(t, DefaultFields, got)
	})

	t.Run("canonical order and dedup", func(t *testing.T) {
		got, err := ParseFields("templates,ip,name,ip_address")
		require.NoError(t, err)
		assert.Equal(t, []Field{FieldName, FieldIPAddress, FieldTemplates}, got)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseFields("name,status")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status")
	})
}

func TestFieldLabel(t *testing.T) {
	assert.Equal(t, "IP", FieldIPAddress.Label())
	assert.Equal(t, "Groups", FieldGroups.Label())
	assert.True(t, FieldGroups.IsSet())
	assert.False(t, FieldName.IsSet())
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "valid",
			doc:  `{"date":"2025-01-02","hosts":[{"host_id":"1","name":"srv-a","ip_address":"10.0.0.1","groups":["web"]}]}`,
		},
		{
			name: "null groups",
			doc:  `{"date":"2025-01-02","hosts":[{"host_id":"1","name":"srv-a","groups":null}]}`,
		},
		{
			name:    "missing date",
			doc:     `{"hosts":[]}`,
			wantErr: true,
		},
		{
			name:    "bad date",
			doc:     `{"date":"02/01/2025","hosts":[]}`,
			wantErr: true,
		},
		{
			name:    "empty host id",
			doc:     `{"date":"2025-01-02","hosts":[{"host_id":"","name":"x"}]}`,
			wantErr: true,
		},
		{
			name:    "numeric host id",
			doc:     `{"date":"2025-01-02","hosts":[{"host_id":1,"name":"x"}]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			doc:     `date: 2025-01-02`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
