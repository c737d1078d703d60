// Copyright 2019 by Thorsten von Eicken, see LICENSE file

// Package tsunb implements the uplink transmit pipeline of the ETSI TS 103 357
// TS-UNB ("MIOTY") telegram splitting ultra-narrowband radio standard.
//
// A short application payload is authenticated and encrypted by the MAC layer
// (Mac), encoded into a set of time- and frequency-scheduled radio bursts by
// the PHY layer (Phy), and handed to a BurstSink for emission. The rfm69
// subpackage provides a burst sink for the HopeRF RFM69w/RFM69hw modules, the
// host subpackage provides the SPI shims, the symbol timer and the
// persistent counter storage, and simple commands to exercise the pipeline can
// be found in the cmd directory tree.
package tsunb
