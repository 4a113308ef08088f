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

// Package mailer delivers rendered reports by email.
//
// Mailer sends a multipart/alternative message (plain text and HTML) with
// optional report attachments over SMTP using github.com/wneessen/go-mail.
//
//	m, err := mailer.New(mailer.Config{
//	    Host:     "smtp.office365.com",
//	    Port:     587,
//	    Username: "reports@example.com",
//	    Password: secret,
//	    Security: mailer.SecurityStartTLS,
//	})
//	msg := mailer.NewReportMessage(recipients, doc.Label, doc.Summary, arts, paths)
//	err = m.Send(ctx, msg)
//
// The subject follows a fixed scheme so mail filters can match on it:
//
//	Zabbix report - <label> - No changes
//	Zabbix report - <label> - 3 added, 1 removed
package mailer
