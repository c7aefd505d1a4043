// Package ir holds the infrared control core: the protocol identifier
// space, the brand catalog, the command normalizer and the emitter
// contract. Waveform encoding for the individual vendor protocols lives
// behind the Emitter interface.
package ir

import (
	"fmt"
	"strconv"
)

// Protocol identifies one vendor infrared protocol variant. The numeric
// values mirror the identifier space of the emitter driver and are what
// gets persisted and reported to the backend, so they must stay stable.
type Protocol int

const (
	ProtoSamsung            Protocol = 7
	ProtoLG                 Protocol = 10
	ProtoCoolix             Protocol = 15
	ProtoDaikin             Protocol = 16
	ProtoKelvinator         Protocol = 18
	ProtoMitsubishiAC       Protocol = 20
	ProtoGree               Protocol = 24
	ProtoArgo               Protocol = 27
	ProtoTrotec             Protocol = 28
	ProtoToshibaAC          Protocol = 32
	ProtoFujitsuAC          Protocol = 33
	ProtoMidea              Protocol = 34
	ProtoCarrierAC          Protocol = 37
	ProtoHaierAC            Protocol = 38
	ProtoHitachiAC          Protocol = 40
	ProtoHitachiAC1         Protocol = 41
	ProtoHitachiAC2         Protocol = 42
	ProtoHaierACYRW02       Protocol = 44
	ProtoWhirlpoolAC        Protocol = 45
	ProtoSamsungAC          Protocol = 46
	ProtoElectraAC          Protocol = 48
	ProtoPanasonicAC        Protocol = 49
	ProtoDaikin2            Protocol = 53
	ProtoVestelAC           Protocol = 54
	ProtoTeco               Protocol = 55
	ProtoTCL112AC           Protocol = 57
	ProtoMitsubishiHeavy88  Protocol = 59
	ProtoMitsubishiHeavy152 Protocol = 60
	ProtoDaikin216          Protocol = 61
	ProtoSharpAC            Protocol = 62
	ProtoGoodweather        Protocol = 63
	ProtoDaikin160          Protocol = 65
	ProtoNeoclima           Protocol = 66
	ProtoDaikin176          Protocol = 67
	ProtoDaikin128          Protocol = 68
	ProtoAmcor              Protocol = 69
	ProtoDaikin152          Protocol = 70
	ProtoMitsubishi136      Protocol = 71
	ProtoMitsubishi112      Protocol = 72
	ProtoHitachiAC424       Protocol = 73
	ProtoHitachiAC3         Protocol = 77
	ProtoDaikin64           Protocol = 78
	ProtoAirwell            Protocol = 79
	ProtoDelonghiAC         Protocol = 80
	ProtoCarrierAC40        Protocol = 83
	ProtoCarrierAC64        Protocol = 84
	ProtoHitachiAC344       Protocol = 85
	ProtoCoronaAC           Protocol = 86
	ProtoMidea24            Protocol = 87
	ProtoSanyoAC            Protocol = 89
	ProtoVoltas             Protocol = 90
	ProtoTranscold          Protocol = 92
	ProtoTechnibelAC        Protocol = 93
	ProtoMirage             Protocol = 94
	ProtoPanasonicAC32      Protocol = 96
	ProtoEcoclim            Protocol = 98
	ProtoTruma              Protocol = 100
	ProtoHaierAC176         Protocol = 101
	ProtoTeknopoint         Protocol = 102
	ProtoKelon              Protocol = 103
	ProtoTrotec3550         Protocol = 104
	ProtoSanyoAC88          Protocol = 105
	ProtoRhoss              Protocol = 108
	ProtoAirton             Protocol = 109
	ProtoCoolix48           Protocol = 110
	ProtoHitachiAC264       Protocol = 111
	ProtoKelon168           Protocol = 112
	ProtoHitachiAC296       Protocol = 113
	ProtoDaikin200          Protocol = 114
	ProtoHaierAC160         Protocol = 115
	ProtoCarrierAC128       Protocol = 116
	ProtoClimaButler        Protocol = 118
	ProtoTCL96AC            Protocol = 119
	ProtoBosch144           Protocol = 120
	ProtoSanyoAC152         Protocol = 121
	ProtoDaikin312          Protocol = 122
	ProtoGorenje            Protocol = 123
	ProtoCarrierAC84        Protocol = 125
	ProtoYork               Protocol = 126
)

var protocolNames = map[Protocol]string{
	ProtoSamsung:            "SAMSUNG",
	ProtoLG:                 "LG",
	ProtoCoolix:             "COOLIX",
	ProtoDaikin:             "DAIKIN",
	ProtoKelvinator:         "KELVINATOR",
	ProtoMitsubishiAC:       "MITSUBISHI_AC",
	ProtoGree:               "GREE",
	ProtoArgo:               "ARGO",
	ProtoTrotec:             "TROTEC",
	ProtoToshibaAC:          "TOSHIBA_AC",
	ProtoFujitsuAC:          "FUJITSU_AC",
	ProtoMidea:              "MIDEA",
	ProtoCarrierAC:          "CARRIER_AC",
	ProtoHaierAC:            "HAIER_AC",
	ProtoHitachiAC:          "HITACHI_AC",
	ProtoHitachiAC1:         "HITACHI_AC1",
	ProtoHitachiAC2:         "HITACHI_AC2",
	ProtoHaierACYRW02:       "HAIER_AC_YRW02",
	ProtoWhirlpoolAC:        "WHIRLPOOL_AC",
	ProtoSamsungAC:          "SAMSUNG_AC",
	ProtoElectraAC:          "ELECTRA_AC",
	ProtoPanasonicAC:        "PANASONIC_AC",
	ProtoDaikin2:            "DAIKIN2",
	ProtoVestelAC:           "VESTEL_AC",
	ProtoTeco:               "TECO",
	ProtoTCL112AC:           "TCL112AC",
	ProtoMitsubishiHeavy88:  "MITSUBISHI_HEAVY_88",
	ProtoMitsubishiHeavy152: "MITSUBISHI_HEAVY_152",
	ProtoDaikin216:          "DAIKIN216",
	ProtoSharpAC:            "SHARP_AC",
	ProtoGoodweather:        "GOODWEATHER",
	ProtoDaikin160:          "DAIKIN160",
	ProtoNeoclima:           "NEOCLIMA",
	ProtoDaikin176:          "DAIKIN176",
	ProtoDaikin128:          "DAIKIN128",
	ProtoAmcor:              "AMCOR",
	ProtoDaikin152:          "DAIKIN152",
	ProtoMitsubishi136:      "MITSUBISHI136",
	ProtoMitsubishi112:      "MITSUBISHI112",
	ProtoHitachiAC424:       "HITACHI_AC424",
	ProtoHitachiAC3:         "HITACHI_AC3",
	ProtoDaikin64:           "DAIKIN64",
	ProtoAirwell:            "AIRWELL",
	ProtoDelonghiAC:         "DELONGHI_AC",
	ProtoCarrierAC40:        "CARRIER_AC40",
	ProtoCarrierAC64:        "CARRIER_AC64",
	ProtoHitachiAC344:       "HITACHI_AC344",
	ProtoCoronaAC:           "CORONA_AC",
	ProtoMidea24:            "MIDEA24",
	ProtoSanyoAC:            "SANYO_AC",
	ProtoVoltas:             "VOLTAS",
	ProtoTranscold:          "TRANSCOLD",
	ProtoTechnibelAC:        "TECHNIBEL_AC",
	ProtoMirage:             "MIRAGE",
	ProtoPanasonicAC32:      "PANASONIC_AC32",
	ProtoEcoclim:            "ECOCLIM",
	ProtoTruma:              "TRUMA",
	ProtoHaierAC176:         "HAIER_AC176",
	ProtoTeknopoint:         "TEKNOPOINT",
	ProtoKelon:              "KELON",
	ProtoTrotec3550:         "TROTEC_3550",
	ProtoSanyoAC88:          "SANYO_AC88",
	ProtoRhoss:              "RHOSS",
	ProtoAirton:             "AIRTON",
	ProtoCoolix48:           "COOLIX48",
	ProtoHitachiAC264:       "HITACHI_AC264",
	ProtoKelon168:           "KELON168",
	ProtoHitachiAC296:       "HITACHI_AC296",
	ProtoDaikin200:          "DAIKIN200",
	ProtoHaierAC160:         "HAIER_AC160",
	ProtoCarrierAC128:       "CARRIER_AC128",
	ProtoClimaButler:        "CLIMABUTLER",
	ProtoTCL96AC:            "TCL96AC",
	ProtoBosch144:           "BOSCH144",
	ProtoSanyoAC152:         "SANYO_AC152",
	ProtoDaikin312:          "DAIKIN312",
	ProtoGorenje:            "GORENJE",
	ProtoCarrierAC84:        "CARRIER_AC84",
	ProtoYork:               "YORK",
}

// String returns the driver-level protocol name, or the numeric code for
// identifiers outside the known set.
func (p Protocol) String() string {
	if name, ok := protocolNames[p]; ok {
		return name
	}
	return strconv.Itoa(int(p))
}

// Code returns the persisted form of the protocol identifier.
func (p Protocol) Code() string {
	return strconv.Itoa(int(p))
}

// ParseProtocol parses a persisted numeric protocol code. An empty or
// non-numeric string, or a code outside the known identifier space, is an
// error: the caller must not attempt a transmission with it.
func ParseProtocol(code string) (Protocol, error) {
	n, err := strconv.Atoi(code)
	if err != nil {
		return 0, fmt.Errorf("unrecognized protocol code %q", code)
	}
	p := Protocol(n)
	if _, ok := protocolNames[p]; !ok {
		return 0, fmt.Errorf("unknown protocol code %d", n)
	}
	return p, nil
}
