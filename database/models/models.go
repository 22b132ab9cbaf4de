// Copyright 2026 Blink Labs Software
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

package models

import "errors"

var (
	ErrGlobalConfigNotFound    = errors.New("global config not found")
	ErrEmergencyConfigNotFound = errors.New("emergency config not found")
	ErrPrizeConfigNotFound     = errors.New("prize config not found")
)

// MigrateModels contains a list of model objects that should have DB migrations applied
var MigrateModels = []any{
	&AccessPass{},
	&EmergencyConfig{},
	&EmergencySignature{},
	&EmergencyUnlockRequest{},
	&GlobalConfig{},
	&PrizeConfig{},
	&PrizeDistribution{},
	&PrizeRecipient{},
	&Proposal{},
	&Vote{},
}

// SingletonRowId is the primary key used by every singleton config table
const SingletonRowId = 1
